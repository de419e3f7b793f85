package kernels

import (
	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/particle"
)

// EE is explicit Euler advection on (lon, lat). First order; largest local
// error, kept as the cheap robust baseline.
type EE struct{}

func NewEE() *EE { return &EE{} }

func (*EE) Name() string { return "EE" }

func (*EE) Evaluate(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error) {
	u, v, err := fs.SampleUV(t, p.Depth, p.Lat, p.Lon, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	p.Lon += u * p.Dt
	p.Lat += v * p.Dt
	return particle.Success, nil
}

// RK4 is classical four-stage fourth-order Runge-Kutta advection on
// (lon, lat); depth is untouched.
type RK4 struct{}

func NewRK4() *RK4 { return &RK4{} }

func (*RK4) Name() string { return "RK4" }

func (*RK4) Evaluate(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error) {
	dt := p.Dt
	u1, v1, err := fs.SampleUV(t, p.Depth, p.Lat, p.Lon, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lon1, lat1 := p.Lon+u1*0.5*dt, p.Lat+v1*0.5*dt
	u2, v2, err := fs.SampleUV(t+0.5*dt, p.Depth, lat1, lon1, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lon2, lat2 := p.Lon+u2*0.5*dt, p.Lat+v2*0.5*dt
	u3, v3, err := fs.SampleUV(t+0.5*dt, p.Depth, lat2, lon2, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lon3, lat3 := p.Lon+u3*dt, p.Lat+v3*dt
	u4, v4, err := fs.SampleUV(t+dt, p.Depth, lat3, lon3, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	p.Lon += (u1 + 2*u2 + 2*u3 + u4) / 6 * dt
	p.Lat += (v1 + 2*v2 + 2*v3 + v4) / 6 * dt
	return particle.Success, nil
}

// RK43D extends RK4 to also integrate depth with the vertical component.
// The vertical field is a depth rate: positive values move the particle
// downward, matching the depth-increases-downward convention.
type RK43D struct{}

func NewRK43D() *RK43D { return &RK43D{} }

func (*RK43D) Name() string { return "RK4_3D" }

func (*RK43D) Evaluate(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error) {
	dt := p.Dt
	sample := func(t, z, y, x float64) (u, v, w float64, err error) {
		if u, v, err = fs.SampleUV(t, z, y, x, p.Hint); err != nil {
			return 0, 0, 0, err
		}
		w, err = fs.SampleW(t, z, y, x, p.Hint)
		return u, v, w, err
	}
	u1, v1, w1, err := sample(t, p.Depth, p.Lat, p.Lon)
	if err != nil {
		return boundaryState(err)
	}
	lon1, lat1, dep1 := p.Lon+u1*0.5*dt, p.Lat+v1*0.5*dt, p.Depth+w1*0.5*dt
	u2, v2, w2, err := sample(t+0.5*dt, dep1, lat1, lon1)
	if err != nil {
		return boundaryState(err)
	}
	lon2, lat2, dep2 := p.Lon+u2*0.5*dt, p.Lat+v2*0.5*dt, p.Depth+w2*0.5*dt
	u3, v3, w3, err := sample(t+0.5*dt, dep2, lat2, lon2)
	if err != nil {
		return boundaryState(err)
	}
	lon3, lat3, dep3 := p.Lon+u3*dt, p.Lat+v3*dt, p.Depth+w3*dt
	u4, v4, w4, err := sample(t+dt, dep3, lat3, lon3)
	if err != nil {
		return boundaryState(err)
	}
	p.Lon += (u1 + 2*u2 + 2*u3 + u4) / 6 * dt
	p.Lat += (v1 + 2*v2 + 2*v3 + v4) / 6 * dt
	p.Depth += (w1 + 2*w2 + 2*w3 + w4) / 6 * dt
	return particle.Success, nil
}
