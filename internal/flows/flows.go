// Package flows builds the synthetic flow fields used by tests, presets and
// the CLI: uniform and sheared streams, periodic channels, and the analytic
// eddy families with known closed-form trajectories.
package flows

import (
	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/grid"
)

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n == 1 {
		return []float64{a}
	}
	out := make([]float64, n)
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[n-1] = b
	return out
}

// Arange returns values from start up to and including stop, stepping by
// step (stop is kept when it lands within a half step, mirroring the usual
// snapshot-time construction).
func Arange(start, stop, step float64) []float64 {
	var out []float64
	for v := start; v <= stop+step*1e-9; v += step {
		out = append(out, v)
	}
	return out
}

// Uniform2D is a constant horizontal flow on the given lateral axes.
func Uniform2D(u, v float64, lon, lat []float64, opts ...field.Option) (*field.FieldSet, error) {
	ny, nx := len(lat), len(lon)
	data := map[string]*field.Array{
		"U": field.Uniform(u, 1, 1, ny, nx),
		"V": field.Uniform(v, 1, 1, ny, nx),
	}
	return field.FromData(data, field.Dimensions{Lon: lon, Lat: lat}, opts...)
}

// Uniform3D is a constant three-component flow on the given axes.
func Uniform3D(u, v, w float64, lon, lat, depth []float64, opts ...field.Option) (*field.FieldSet, error) {
	nz, ny, nx := len(depth), len(lat), len(lon)
	data := map[string]*field.Array{
		"U": field.Uniform(u, 1, nz, ny, nx),
		"V": field.Uniform(v, 1, nz, ny, nx),
		"W": field.Uniform(w, 1, nz, ny, nx),
	}
	return field.FromData(data, field.Dimensions{Lon: lon, Lat: lat, Depth: depth}, opts...)
}

// ZonalShear is a flat horizontal flow whose eastward speed grows linearly
// with depth from zero at the shallowest level to one at the deepest.
func ZonalShear(lon, lat, depth []float64, opts ...field.Option) (*field.FieldSet, error) {
	nz, ny, nx := len(depth), len(lat), len(lon)
	span := depth[nz-1] - depth[0]
	data := map[string]*field.Array{
		"U": field.Fill(1, nz, ny, nx, func(_, zi, _, _ int) float64 {
			return (depth[zi] - depth[0]) / span
		}),
		"V": field.Uniform(0, 1, nz, ny, nx),
	}
	return field.FromData(data, field.Dimensions{Lon: lon, Lat: lat, Depth: depth}, opts...)
}

// Periodic is a uniform spherical flow on the unit square sampled so that
// the first and last coordinates are one spacing apart across the seam,
// ready for AddPeriodicHalo.
func Periodic(xdim, ydim int, u, v float64) (*field.FieldSet, error) {
	lon := Linspace(0, 1, xdim+1)[1:]
	lat := Linspace(0, 1, ydim+1)[1:]
	return Uniform2D(u, v, lon, lat, field.WithMesh(grid.MeshSpherical))
}
