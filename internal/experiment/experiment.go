// Package experiment wires a configuration to a runnable simulation: flow
// construction, kernel selection, particle release and execution.
package experiment

import (
	"context"
	"fmt"

	"github.com/Eisbrenner/parcels/internal/compute"
	"github.com/Eisbrenner/parcels/internal/config"
	"github.com/Eisbrenner/parcels/internal/diag"
	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/kernels"
	"github.com/Eisbrenner/parcels/internal/particle"
	"github.com/Eisbrenner/parcels/internal/pset"
)

type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	fieldset  *field.FieldSet
	kernel    kernels.Kernel
	set       *pset.ParticleSet
	collector *diag.Collector
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{cfg: cfg, registry: NewRegistry(), collector: diag.NewCollector()}
}

// Setup builds the flow field, applies halo and interpolation settings, and
// releases the configured particles. Must run before Run.
func (e *Experiment) Setup() error {
	fs, err := e.registry.GetFlow(e.cfg.Flow, e.cfg)
	if err != nil {
		return err
	}
	if e.cfg.Halo.Zonal || e.cfg.Halo.Meridional {
		if err := fs.AddPeriodicHalo(e.cfg.Halo.Zonal, e.cfg.Halo.Meridional, e.cfg.Halo.Size); err != nil {
			return err
		}
	}
	kernel, err := e.registry.GetKernel(e.cfg.Kernel, e.cfg)
	if err != nil {
		return err
	}
	if e.cfg.Kernel == "Analytical" {
		// Closed-form advection reads face velocities, so the velocity
		// fields must be flagged as staggered.
		for _, name := range []string{"U", "V", "W"} {
			if _, ok := fs.Field(name); ok {
				if err := fs.SetInterpMethod(name, field.InterpCGridVelocity); err != nil {
					return err
				}
			}
		}
	}

	rel := e.cfg.Release
	n := rel.NumParticles
	if n <= 0 {
		return fmt.Errorf("experiment: release needs at least one particle")
	}
	lons := linspace(rel.LonStart, rel.LonEnd, n)
	lats := linspace(rel.LatStart, rel.LatEnd, n)
	depths := linspace(rel.DepthStart, rel.DepthEnd, n)
	set, err := pset.New(fs, lons, lats, depths)
	if err != nil {
		return err
	}

	e.fieldset = fs
	e.kernel = kernel
	e.set = set
	return nil
}

// Run executes the configured kernel over the particle set, streaming
// checkpoints to the given writer (which may be nil).
func (e *Experiment) Run(ctx context.Context, w pset.Writer) error {
	if e.set == nil {
		return fmt.Errorf("experiment not set up")
	}
	var backend compute.Backend
	if e.cfg.Backend != "" {
		b, err := e.registry.GetBackend(e.cfg.Backend)
		if err != nil {
			return err
		}
		backend = b
	}
	var recovery map[particle.State]kernels.Kernel
	switch e.cfg.Recovery {
	case "", "none":
	case "delete":
		recovery = map[particle.State]kernels.Kernel{
			particle.ErrorOutOfBounds: kernels.DeleteParticle(),
		}
	default:
		return fmt.Errorf("experiment: unknown recovery mode %q", e.cfg.Recovery)
	}
	return e.set.Execute(e.kernel, pset.Options{
		Dt:             e.cfg.Dt,
		Stop:           pset.RunFor(e.cfg.Runtime),
		OutputInterval: e.cfg.OutputInterval,
		Recovery:       recovery,
		Writer:         w,
		Observers:      []pset.Observer{e.collector},
		Backend:        backend,
		Context:        ctx,
	})
}

func (e *Experiment) FieldSet() *field.FieldSet      { return e.fieldset }
func (e *Experiment) ParticleSet() *pset.ParticleSet { return e.set }
func (e *Experiment) Diagnostics() *diag.Collector   { return e.collector }

func linspace(a, b float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	return out
}
