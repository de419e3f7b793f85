// Package kernels defines the integration kernel contract and the advection
// schemes that move particles through a sampled flow field.
package kernels

import (
	"errors"
	"strings"

	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/particle"
)

// Kernel is a pure computation mapping a particle, its fieldset and the
// current time to an updated particle state. Boundary conditions surface as
// particle states; a non-nil error is a fatal configuration problem that
// aborts the whole run.
type Kernel interface {
	Name() string
	Evaluate(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error)
}

// Chain composes kernels by sequential application: each constituent runs in
// declaration order, and the first non-Success outcome skips the rest of the
// chain for that particle in that step.
type Chain struct {
	kernels []Kernel
}

func NewChain(ks ...Kernel) *Chain {
	flat := make([]Kernel, 0, len(ks))
	for _, k := range ks {
		if c, ok := k.(*Chain); ok {
			flat = append(flat, c.kernels...)
			continue
		}
		flat = append(flat, k)
	}
	return &Chain{kernels: flat}
}

func (c *Chain) Name() string {
	names := make([]string, len(c.kernels))
	for i, k := range c.kernels {
		names[i] = k.Name()
	}
	return strings.Join(names, "+")
}

func (c *Chain) Evaluate(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error) {
	for _, k := range c.kernels {
		st, err := k.Evaluate(p, fs, t)
		if err != nil || st != particle.Success {
			return st, err
		}
	}
	return particle.Success, nil
}

// Func adapts a plain function to a Kernel, for user kernels and recovery
// handlers.
type Func struct {
	name string
	fn   func(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error)
}

func NewFunc(name string, fn func(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error)) *Func {
	return &Func{name: name, fn: fn}
}

func (f *Func) Name() string { return f.name }

func (f *Func) Evaluate(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error) {
	return f.fn(p, fs, t)
}

// DeleteParticle is the usual recovery for lateral exits: discard the
// particle and continue the run.
func DeleteParticle() Kernel {
	return NewFunc("DeleteParticle", func(p *particle.Particle, _ *field.FieldSet, _ float64) (particle.State, error) {
		p.MarkDelete()
		return particle.Delete, nil
	})
}

// boundaryState maps a sampling failure onto the particle state machine.
// Unsupported-configuration errors stay fatal.
func boundaryState(err error) (particle.State, error) {
	switch {
	case errors.Is(err, field.ErrThroughSurface):
		return particle.ErrorThroughSurface, nil
	case errors.Is(err, field.ErrOutOfBounds):
		return particle.ErrorOutOfBounds, nil
	case errors.Is(err, field.ErrUnsupportedInterp):
		return particle.Error, err
	default:
		return particle.Error, nil
	}
}
