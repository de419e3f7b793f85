package pset

import (
	"errors"
	"fmt"

	"github.com/Eisbrenner/parcels/internal/particle"
)

var (
	// ErrNoRecovery aborts a run when a particle signals an error state
	// with no matching entry in the recovery map.
	ErrNoRecovery = errors.New("pset: no recovery kernel registered")

	// ErrRecoveryFailed aborts a run when a recovery kernel leaves the
	// particle in an error state.
	ErrRecoveryFailed = errors.New("pset: recovery kernel left particle in error state")
)

// KernelError is the fatal abort condition of a run. It names the offending
// particle, its state and the triggering error so failures never reduce to
// "some particle failed".
type KernelError struct {
	Particle *particle.Particle
	State    particle.State
	Err      error
}

func (e *KernelError) Error() string {
	return fmt.Sprintf("%v: %s: %v", e.Particle, e.State, e.Err)
}

func (e *KernelError) Unwrap() error { return e.Err }
