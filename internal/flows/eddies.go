package flows

import (
	"math"

	"github.com/Eisbrenner/parcels/internal/field"
)

// EddyParams collects the inertial-oscillation constants shared by the eddy
// flow families. The defaults follow N. Fabbroni, 2009, "Numerical
// simulations of passive tracers dispersion in the sea".
type EddyParams struct {
	F      float64 // Coriolis parameter (1/s)
	U0     float64 // initial oscillation speed (m/s)
	Ug     float64 // geostrophic background speed (m/s)
	Gamma  float64 // oscillation decay rate (1/s)
	GammaG float64 // background decay rate (1/s)
}

// DefaultEddyParams are the Fabbroni constants.
func DefaultEddyParams() EddyParams {
	return EddyParams{
		F:      1e-4,
		U0:     0.3,
		Ug:     0.04,
		Gamma:  1 / (86400.0 * 2.89),
		GammaG: 1 / (86400.0 * 28.9),
	}
}

// eddyField samples a spatially uniform, time-varying velocity pair on a
// 25 km square with one snapshot per minute up to maxtime.
func eddyField(xdim, ydim int, maxtime float64, uv func(t float64) (u, v float64)) (*field.FieldSet, error) {
	times := Arange(0, maxtime, 60)
	nt := len(times)
	data := map[string]*field.Array{
		"U": field.Fill(nt, 1, ydim, xdim, func(ti, _, _, _ int) float64 {
			u, _ := uv(times[ti])
			return u
		}),
		"V": field.Fill(nt, 1, ydim, xdim, func(ti, _, _, _ int) float64 {
			_, v := uv(times[ti])
			return v
		}),
	}
	dims := field.Dimensions{
		Lon:  Linspace(0, 25000, xdim),
		Lat:  Linspace(0, 25000, ydim),
		Time: times,
	}
	return field.FromData(data, dims)
}

// StationaryEddy is the flow of a pure inertial oscillation: every particle
// traces a circle of radius U0/F.
func StationaryEddy(xdim, ydim int, maxtime float64, ep EddyParams) (*field.FieldSet, error) {
	return eddyField(xdim, ydim, maxtime, func(t float64) (float64, float64) {
		return ep.U0 * math.Cos(ep.F*t), -ep.U0 * math.Sin(ep.F*t)
	})
}

// TruthStationary is the exact trajectory through StationaryEddy from
// (x0, y0) at release to time t.
func TruthStationary(x0, y0, t float64, ep EddyParams) (lon, lat float64) {
	lon = x0 + ep.U0/ep.F*math.Sin(ep.F*t)
	lat = y0 - ep.U0/ep.F*(1-math.Cos(ep.F*t))
	return lon, lat
}

// MovingEddy superimposes a geostrophic drift Ug on the oscillation.
func MovingEddy(xdim, ydim int, maxtime float64, ep EddyParams) (*field.FieldSet, error) {
	return eddyField(xdim, ydim, maxtime, func(t float64) (float64, float64) {
		return ep.Ug + (ep.U0-ep.Ug)*math.Cos(ep.F*t), -(ep.U0 - ep.Ug) * math.Sin(ep.F*t)
	})
}

// TruthMoving is the exact trajectory through MovingEddy.
func TruthMoving(x0, y0, t float64, ep EddyParams) (lon, lat float64) {
	lon = x0 + ep.Ug*t + (ep.U0-ep.Ug)/ep.F*math.Sin(ep.F*t)
	lat = y0 - (ep.U0-ep.Ug)/ep.F*(1-math.Cos(ep.F*t))
	return lon, lat
}

// DecayingEddy lets both the oscillation and the background drift decay
// exponentially.
func DecayingEddy(xdim, ydim int, maxtime float64, ep EddyParams) (*field.FieldSet, error) {
	return eddyField(xdim, ydim, maxtime, func(t float64) (float64, float64) {
		u := ep.Ug*math.Exp(-ep.GammaG*t) + (ep.U0-ep.Ug)*math.Exp(-ep.Gamma*t)*math.Cos(ep.F*t)
		v := -(ep.U0 - ep.Ug) * math.Exp(-ep.Gamma*t) * math.Sin(ep.F*t)
		return u, v
	})
}

// TruthDecaying is the exact trajectory through DecayingEddy.
func TruthDecaying(x0, y0, t float64, ep EddyParams) (lon, lat float64) {
	fg := (ep.U0 - ep.Ug) * ep.F / (ep.F*ep.F + ep.Gamma*ep.Gamma)
	lon = x0 + ep.Ug/ep.GammaG*(1-math.Exp(-ep.GammaG*t)) +
		fg*(ep.Gamma/ep.F+math.Exp(-ep.Gamma*t)*(math.Sin(ep.F*t)-ep.Gamma/ep.F*math.Cos(ep.F*t)))
	lat = y0 - fg*(1-math.Exp(-ep.Gamma*t)*(math.Cos(ep.F*t)+ep.Gamma/ep.F*math.Sin(ep.F*t)))
	return lon, lat
}
