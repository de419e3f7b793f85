package field

import "math"

// metersPerDegree is the length of one degree of latitude (1852 m per
// nautical mile, 60 minutes per degree).
const metersPerDegree = 1852.0 * 60.0

// Converter turns a sampled physical value into the units the integrator
// works in. On spherical meshes velocities arrive in m/s but positions are
// degrees, so the two horizontal components need distance-to-degree
// conversion; everything else passes through untouched.
type Converter interface {
	ToTarget(value, depth, lat, lon float64) float64
}

type identityConverter struct{}

func (identityConverter) ToTarget(v, _, _, _ float64) float64 { return v }

// geographic converts a meridional velocity from m/s to deg/s.
type geographic struct{}

func (geographic) ToTarget(v, _, _, _ float64) float64 {
	return v / metersPerDegree
}

// geographicPolar converts a zonal velocity from m/s to deg/s. The extra
// cosine factor is the pole correction: a fixed eastward speed changes
// longitude faster at high latitude.
type geographicPolar struct{}

func (geographicPolar) ToTarget(v, _, lat, _ float64) float64 {
	return v / (metersPerDegree * math.Cos(lat*math.Pi/180))
}
