package experiment

import (
	"fmt"

	"github.com/Eisbrenner/parcels/internal/compute"
	"github.com/Eisbrenner/parcels/internal/config"
	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/flows"
	"github.com/Eisbrenner/parcels/internal/kernels"
)

type Registry struct {
	flows    map[string]func(cfg *config.Config) (*field.FieldSet, error)
	kernels  map[string]func(cfg *config.Config) kernels.Kernel
	backends map[string]func() compute.Backend
}

func NewRegistry() *Registry {
	r := &Registry{
		flows:    make(map[string]func(cfg *config.Config) (*field.FieldSet, error)),
		kernels:  make(map[string]func(cfg *config.Config) kernels.Kernel),
		backends: make(map[string]func() compute.Backend),
	}

	eddy := func(build func(xdim, ydim int, maxtime float64, ep flows.EddyParams) (*field.FieldSet, error)) func(cfg *config.Config) (*field.FieldSet, error) {
		return func(cfg *config.Config) (*field.FieldSet, error) {
			return build(100, 100, cfg.Runtime, flows.DefaultEddyParams())
		}
	}
	r.flows["stationary_eddy"] = eddy(flows.StationaryEddy)
	r.flows["moving_eddy"] = eddy(flows.MovingEddy)
	r.flows["decaying_eddy"] = eddy(flows.DecayingEddy)
	r.flows["moving_eddies"] = func(*config.Config) (*field.FieldSet, error) {
		return flows.MovingEddies(200, 350)
	}
	r.flows["periodic"] = func(*config.Config) (*field.FieldSet, error) {
		return flows.Periodic(100, 100, 0.1/(86400*1.852*1.852), 0)
	}
	r.flows["uniform"] = func(*config.Config) (*field.FieldSet, error) {
		return flows.Uniform2D(1, 0, flows.Linspace(0, 1e6, 100), flows.Linspace(0, 1e6, 100))
	}
	r.flows["zonal_shear"] = func(*config.Config) (*field.FieldSet, error) {
		return flows.ZonalShear(flows.Linspace(0, 1e6, 50), flows.Linspace(0, 1e6, 50), flows.Linspace(0, 1000, 11))
	}

	r.kernels["EE"] = func(*config.Config) kernels.Kernel { return kernels.NewEE() }
	r.kernels["RK4"] = func(*config.Config) kernels.Kernel { return kernels.NewRK4() }
	r.kernels["RK4_3D"] = func(*config.Config) kernels.Kernel { return kernels.NewRK43D() }
	r.kernels["RK45"] = func(cfg *config.Config) kernels.Kernel {
		k := kernels.NewRK45()
		if cfg.RK45.Tolerance > 0 {
			k.Tol = cfg.RK45.Tolerance
		}
		if cfg.RK45.MinDt > 0 {
			k.MinDt = cfg.RK45.MinDt
		}
		if cfg.RK45.MaxDt > 0 {
			k.MaxDt = cfg.RK45.MaxDt
		}
		return k
	}
	r.kernels["Analytical"] = func(*config.Config) kernels.Kernel { return kernels.NewAnalytical() }

	r.backends["serial"] = func() compute.Backend { return compute.NewSerial() }
	r.backends["parallel"] = func() compute.Backend { return compute.NewParallel(0) }

	return r
}

func (r *Registry) GetFlow(name string, cfg *config.Config) (*field.FieldSet, error) {
	fn, ok := r.flows[name]
	if !ok {
		return nil, fmt.Errorf("unknown flow: %s", name)
	}
	return fn(cfg)
}

func (r *Registry) GetKernel(name string, cfg *config.Config) (kernels.Kernel, error) {
	fn, ok := r.kernels[name]
	if !ok {
		return nil, fmt.Errorf("unknown kernel: %s", name)
	}
	return fn(cfg), nil
}

func (r *Registry) GetBackend(name string) (compute.Backend, error) {
	fn, ok := r.backends[name]
	if !ok {
		return nil, fmt.Errorf("unknown backend: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListFlows() []string {
	names := make([]string, 0, len(r.flows))
	for name := range r.flows {
		names = append(names, name)
	}
	return names
}

func (r *Registry) ListKernels() []string {
	names := make([]string, 0, len(r.kernels))
	for name := range r.kernels {
		names = append(names, name)
	}
	return names
}
