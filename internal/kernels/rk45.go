package kernels

import (
	"math"

	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/particle"
)

// Dormand-Prince coefficients (embedded 4th/5th order pair).
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

// RK45 is adaptive advection on (lon, lat) using the discrepancy between the
// embedded 4th and 5th order estimates to control the particle's step size.
// A rejected step leaves position and time untouched, halves particle.Dt and
// signals Evaluate so the driver retries within the same outer step; an
// accepted step may double particle.Dt for the next call.
type RK45 struct {
	// Tol bounds the per-step position error relative to |dt|, in
	// coordinate units per second.
	Tol   float64
	MinDt float64
	MaxDt float64
}

func NewRK45() *RK45 {
	return &RK45{Tol: 1e-5, MinDt: 1e-3, MaxDt: math.Inf(1)}
}

func (*RK45) Name() string { return "RK45" }

func (r *RK45) Evaluate(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error) {
	dt := p.Dt
	z := p.Depth

	u1, v1, err := fs.SampleUV(t, z, p.Lat, p.Lon, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lon2 := p.Lon + dt*b21*u1
	lat2 := p.Lat + dt*b21*v1
	u2, v2, err := fs.SampleUV(t+a2*dt, z, lat2, lon2, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lon3 := p.Lon + dt*(b31*u1+b32*u2)
	lat3 := p.Lat + dt*(b31*v1+b32*v2)
	u3, v3, err := fs.SampleUV(t+a3*dt, z, lat3, lon3, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lon4 := p.Lon + dt*(b41*u1+b42*u2+b43*u3)
	lat4 := p.Lat + dt*(b41*v1+b42*v2+b43*v3)
	u4, v4, err := fs.SampleUV(t+a4*dt, z, lat4, lon4, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lon5 := p.Lon + dt*(b51*u1+b52*u2+b53*u3+b54*u4)
	lat5 := p.Lat + dt*(b51*v1+b52*v2+b53*v3+b54*v4)
	u5, v5, err := fs.SampleUV(t+a5*dt, z, lat5, lon5, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lon6 := p.Lon + dt*(b61*u1+b62*u2+b63*u3+b64*u4+b65*u5)
	lat6 := p.Lat + dt*(b61*v1+b62*v2+b63*v3+b64*v4+b65*v5)
	u6, v6, err := fs.SampleUV(t+dt, z, lat6, lon6, p.Hint)
	if err != nil {
		return boundaryState(err)
	}
	lonNew := p.Lon + dt*(c1*u1+c3*u3+c4*u4+c5*u5+c6*u6)
	latNew := p.Lat + dt*(c1*v1+c3*v3+c4*v4+c5*v5+c6*v6)
	u7, v7, err := fs.SampleUV(t+dt, z, latNew, lonNew, p.Hint)
	if err != nil {
		return boundaryState(err)
	}

	errLon := dt * (dc1*u1 + dc3*u3 + dc4*u4 + dc5*u5 + dc6*u6 + dc7*u7)
	errLat := dt * (dc1*v1 + dc3*v3 + dc4*v4 + dc5*v5 + dc6*v6 + dc7*v7)
	kappa := math.Hypot(errLon, errLat)

	if kappa <= math.Abs(dt*r.Tol) || math.Abs(dt) <= r.MinDt {
		p.Lon = lonNew
		p.Lat = latNew
		if kappa <= math.Abs(dt*r.Tol/10) {
			grown := 2 * math.Abs(dt)
			if grown > r.MaxDt {
				grown = r.MaxDt
			}
			p.Dt = math.Copysign(grown, dt)
		}
		return particle.Success, nil
	}
	p.Dt = dt / 2
	return particle.Evaluate, nil
}
