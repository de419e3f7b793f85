package pset

import (
	"context"
	"fmt"
	"math"

	"github.com/Eisbrenner/parcels/internal/compute"
	"github.com/Eisbrenner/parcels/internal/kernels"
	"github.com/Eisbrenner/parcels/internal/particle"
)

// Writer receives ensemble snapshots at configured output intervals. It
// observes, never mutates: the particles passed in belong to the set.
type Writer interface {
	Write(t float64, ps []*particle.Particle) error
}

// Observer is notified at the same checkpoints as the Writer, for
// diagnostics that accumulate over a run.
type Observer interface {
	Observe(t float64, ps []*particle.Particle)
}

// StopCondition bounds a run either by duration or by an absolute end time.
type StopCondition struct {
	runtime float64
	endTime float64
	untilEnd bool
}

// RunFor stops after the given duration of simulated time.
func RunFor(d float64) StopCondition { return StopCondition{runtime: d} }

// RunUntil stops at the given absolute simulation time.
func RunUntil(t float64) StopCondition { return StopCondition{endTime: t, untilEnd: true} }

// Options configures one call to Execute.
type Options struct {
	// Dt is the outer step size; its sign selects forward or backward
	// integration.
	Dt   float64
	Stop StopCondition
	// OutputInterval is the simulated time between Writer/Observer
	// checkpoints; zero means a single interval spanning the whole run.
	OutputInterval float64
	// Recovery maps error states to recovery kernels. A particle whose
	// chain signals an error state without a matching entry aborts the
	// run. A ThroughSurface error without its own entry falls back to the
	// OutOfBounds entry.
	Recovery map[particle.State]kernels.Kernel
	Writer   Writer
	Observers []Observer
	// Backend schedules the per-particle sweep; nil selects automatically.
	Backend compute.Backend
	// Context cancels the run at the next checkpoint boundary; nil means
	// no cancellation.
	Context context.Context
}

// Execute advances every non-deleted particle from its current time toward
// the stop condition. Per outer step each particle's kernel chain runs as
// often as its own step size requires; deletions are applied in a single
// compaction at the step boundary, and output is delegated to the Writer at
// checkpoint times. Given fixed initial state, fixed dt and deterministic
// kernels, repeated runs produce identical trajectories regardless of the
// backend.
func (s *ParticleSet) Execute(kernel kernels.Kernel, opts Options) error {
	if opts.Dt == 0 {
		return fmt.Errorf("pset: dt must be non-zero")
	}
	if kernel == nil {
		return fmt.Errorf("pset: nil kernel")
	}
	backend := opts.Backend
	if backend == nil {
		backend = compute.GetBackend()
	}
	s.fs.Freeze()

	sign := 1.0
	if opts.Dt < 0 {
		sign = -1
	}
	start := 0.0
	if len(s.particles) > 0 {
		start = s.particles[0].Time
	}
	end := start + opts.Stop.runtime*sign
	if opts.Stop.untilEnd {
		end = opts.Stop.endTime
	}
	if (end-start)*sign < 0 {
		return fmt.Errorf("pset: end time %g unreachable from %g with dt %g", end, start, opts.Dt)
	}
	interval := math.Abs(opts.OutputInterval)
	if interval == 0 {
		interval = math.Abs(end - start)
	}

	for _, p := range s.particles {
		p.Dt = opts.Dt
		p.State = particle.Evaluate
	}
	if err := s.checkpoint(start, opts); err != nil {
		return err
	}
	if interval == 0 { // zero-length run
		return nil
	}

	errs := make([]error, 0)
	for target := start; (end-target)*sign > 0; {
		if opts.Context != nil {
			if err := opts.Context.Err(); err != nil {
				return err
			}
		}
		target += interval * sign
		if (end-target)*sign < 0 {
			target = end
		}
		slots := make([]error, len(s.particles))
		snapshot := s.particles
		backend.Map(len(snapshot), func(i int) {
			slots[i] = s.advance(snapshot[i], kernel, target, sign, opts.Recovery)
		})
		for _, err := range slots {
			if err != nil {
				errs = append(errs, err)
			}
		}
		if len(errs) > 0 {
			return errs[0]
		}
		s.compact()
		if err := s.checkpoint(target, opts); err != nil {
			return err
		}
	}
	return nil
}

func (s *ParticleSet) checkpoint(t float64, opts Options) error {
	for _, o := range opts.Observers {
		o.Observe(t, s.particles)
	}
	if opts.Writer != nil {
		if err := opts.Writer.Write(t, s.particles); err != nil {
			return fmt.Errorf("pset: output writer: %w", err)
		}
	}
	return nil
}

// advance runs one particle's kernel chain repeatedly until the particle
// reaches the checkpoint time, is deleted, or fails fatally.
//
// The contract with kernels and recovery handlers is deliberate and
// fragile; see the state interpretation rules in the package docs. In
// particular a recovery kernel that wants its own motion to stand must
// advance particle.Time itself and set Success, which suppresses the
// driver's own time advance for that invocation.
func (s *ParticleSet) advance(p *particle.Particle, kernel kernels.Kernel, target, sign float64, recovery map[particle.State]kernels.Kernel) error {
	tol := 1e-9 * math.Max(1, math.Abs(p.Dt))
	for p.State != particle.Delete {
		remaining := (target - p.Time) * sign
		if remaining <= tol {
			break
		}
		dtStep := sign * math.Min(math.Abs(p.Dt), remaining)
		prevDt := p.Dt
		p.Dt = dtStep

		st, err := kernel.Evaluate(p, s.fs, p.Time)
		if err != nil {
			p.State = particle.Error
			return &KernelError{Particle: p, State: particle.Error, Err: err}
		}
		p.State = st

		switch {
		case st == particle.Success:
			p.Time += dtStep
			if p.Dt == dtStep {
				// Undo the checkpoint clamp unless the kernel adapted
				// its own step size.
				p.Dt = prevDt
			}
		case st == particle.Evaluate:
			// Re-run within the same step; the kernel (or a recovery
			// below) controls any time or step-size change itself.
		case st == particle.Delete:
			return nil
		case st.IsError():
			rk := lookupRecovery(recovery, st)
			if rk == nil {
				return &KernelError{Particle: p, State: st, Err: ErrNoRecovery}
			}
			rst, rerr := rk.Evaluate(p, s.fs, p.Time)
			if rerr != nil {
				p.State = particle.Error
				return &KernelError{Particle: p, State: particle.Error, Err: rerr}
			}
			p.State = rst
			if rst.IsError() {
				return &KernelError{Particle: p, State: rst, Err: ErrRecoveryFailed}
			}
			if p.Dt == dtStep {
				p.Dt = prevDt
			}
		default:
			return &KernelError{Particle: p, State: st, Err: fmt.Errorf("pset: kernel returned unknown state %v", st)}
		}
	}
	return nil
}

// lookupRecovery resolves the handler for an error state. ThroughSurface
// falls back to the OutOfBounds handler so that a caller who only decided
// what to do with domain exits treats surface exits the same way.
func lookupRecovery(recovery map[particle.State]kernels.Kernel, st particle.State) kernels.Kernel {
	if recovery == nil {
		return nil
	}
	if rk, ok := recovery[st]; ok {
		return rk
	}
	if st == particle.ErrorThroughSurface {
		return recovery[particle.ErrorOutOfBounds]
	}
	return nil
}
