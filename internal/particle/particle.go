// Package particle holds the mutable per-individual state advanced by the
// execution loop: position, time, step size and the lifecycle state machine.
package particle

import (
	"fmt"

	"github.com/Eisbrenner/parcels/internal/grid"
)

// State is the lifecycle state of a particle. Kernels signal outcomes with
// these values; the execution loop interprets them. The identifiers are
// stable, caller-supplied recovery maps key on them.
type State int

const (
	// Success marks a completed kernel pass; the driver advances the
	// particle's time by its step size.
	Success State = iota
	// Evaluate asks the driver to re-run the kernel chain within the same
	// step without advancing time, e.g. after a rejected adaptive step or
	// a recovery that wants the main kernel re-applied inline.
	Evaluate
	// Error is a generic kernel failure needing an explicit recovery entry.
	Error
	// ErrorOutOfBounds marks a sample outside the bracketable domain.
	ErrorOutOfBounds
	// ErrorThroughSurface marks an upward exit through the surface.
	ErrorThroughSurface
	// Delete removes the particle from its set at the end of the current
	// outer step.
	Delete
)

var stateNames = map[State]string{
	Success:             "Success",
	Evaluate:            "Evaluate",
	Error:               "Error",
	ErrorOutOfBounds:    "ErrorOutOfBounds",
	ErrorThroughSurface: "ErrorThroughSurface",
	Delete:              "Delete",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// IsError reports whether the state is one of the error codes a recovery
// map can handle.
func (s State) IsError() bool {
	return s == Error || s == ErrorOutOfBounds || s == ErrorThroughSurface
}

// Particle is one tracked individual. Position is continuous (Lon, Lat in
// grid coordinate units, Depth increasing downward), Dt is the signed step
// size, and Vars is an open set of user-defined scalars. A particle belongs
// to exactly one ParticleSet.
type Particle struct {
	ID    int
	Lon   float64
	Lat   float64
	Depth float64
	Time  float64
	Dt    float64
	State State

	// Hint caches grid search indices between samples; recovery kernels
	// that teleport the particle should call Hint.Invalidate.
	Hint *grid.Hint

	vars map[string]float64
}

func New(id int, lon, lat, depth, time float64) *Particle {
	return &Particle{
		ID:    id,
		Lon:   lon,
		Lat:   lat,
		Depth: depth,
		Time:  time,
		State: Evaluate,
		Hint:  grid.NewHint(),
	}
}

// Var reads a user-defined scalar, zero when unset.
func (p *Particle) Var(name string) float64 {
	return p.vars[name]
}

// SetVar writes a user-defined scalar.
func (p *Particle) SetVar(name string, v float64) {
	if p.vars == nil {
		p.vars = make(map[string]float64)
	}
	p.vars[name] = v
}

// VarNames lists the user-defined scalars set on this particle.
func (p *Particle) VarNames() []string {
	names := make([]string, 0, len(p.vars))
	for n := range p.vars {
		names = append(names, n)
	}
	return names
}

// MarkDelete flags the particle for removal at the end of the current
// outer step.
func (p *Particle) MarkDelete() { p.State = Delete }

func (p *Particle) String() string {
	return fmt.Sprintf("particle %d (lon=%g, lat=%g, depth=%g, t=%g, state=%s)",
		p.ID, p.Lon, p.Lat, p.Depth, p.Time, p.State)
}
