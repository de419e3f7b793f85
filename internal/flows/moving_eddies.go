package flows

import (
	"math"

	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/grid"
)

// MovingEddies is the two-eddy test flow of Doos, Kjellsson and Jonsson
// (2013, TRACMASS): two Gaussian sea surface height anomalies, one drifting
// westward and one northwestward, with geostrophically balanced velocities.
// The surface height is carried as an auxiliary field P.
func MovingEddies(xdim, ydim int) (*field.FieldSet, error) {
	lon := Linspace(0, 4, xdim)
	lat := Linspace(45, 52, ydim)
	times := Arange(0, 24*86400, 86400)
	nt := len(times)

	// Grid spacing in metres, for the pressure gradient.
	cosMean := math.Cos(0.5 * (lat[0] + lat[ydim-1]) * math.Pi / 180)
	dx := (lon[1] - lon[0]) * 1852 * 60 * cosMean
	dy := (lat[1] - lat[0]) * 1852 * 60

	const (
		corio     = 1e-4 // Coriolis parameter
		h0        = 1.0  // max eddy height (m)
		sig       = 30.0 // e-folding decay scale (grid points)
		g         = 10.0 // gravitational acceleration
		eddySpeed = 0.1  // translation speed (m/s)
	)
	dX := eddySpeed * 86400 / dx // eddy centre drift per day, in cells

	p := field.Fill(nt, 1, ydim, xdim, func(ti, _, yi, xi int) float64 {
		drift := dX * float64(ti-2)
		y1 := float64(ydim) / 7
		x1 := 0.75*float64(xdim) - drift
		y2 := 3*float64(ydim)/7 + drift
		x2 := x1
		fy, fx := float64(yi), float64(xi)
		return h0*math.Exp(-((fx-x1)*(fx-x1)+(fy-y1)*(fy-y1))/(sig*sig)) +
			h0*math.Exp(-((fx-x2)*(fx-x2)+(fy-y2)*(fy-y2))/(sig*sig))
	})
	ssh := func(ti, yi, xi int) float64 {
		if yi >= ydim {
			yi = ydim - 1
		}
		if xi >= xdim {
			xi = xdim - 1
		}
		return p.Data[(ti*ydim+yi)*xdim+xi]
	}

	// Geostrophic balance: U from the meridional SSH gradient, V from the
	// zonal one, with the outermost row and column padded from the
	// neighbouring difference.
	u := field.Fill(nt, 1, ydim, xdim, func(ti, _, yi, xi int) float64 {
		if yi == ydim-1 {
			yi--
		}
		return (ssh(ti, yi+1, xi) - ssh(ti, yi, xi)) / dy / corio * g
	})
	v := field.Fill(nt, 1, ydim, xdim, func(ti, _, yi, xi int) float64 {
		if xi == xdim-1 {
			xi--
		}
		return -(ssh(ti, yi, xi+1) - ssh(ti, yi, xi)) / dx / corio * g
	})

	data := map[string]*field.Array{"U": u, "V": v, "P": p}
	dims := field.Dimensions{Lon: lon, Lat: lat, Time: times}
	return field.FromData(data, dims, field.WithMesh(grid.MeshSpherical))
}
