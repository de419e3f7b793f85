package flows

import (
	"math"
	"testing"

	"github.com/Eisbrenner/parcels/internal/grid"
)

func TestLinspace(t *testing.T) {
	v := Linspace(0, 10, 5)
	want := []float64{0, 2.5, 5, 7.5, 10}
	for i := range want {
		if v[i] != want[i] {
			t.Errorf("Linspace[%d] = %g, want %g", i, v[i], want[i])
		}
	}
	if one := Linspace(3, 9, 1); len(one) != 1 || one[0] != 3 {
		t.Errorf("Linspace n=1 = %v, want [3]", one)
	}
	if v := Linspace(0, 1, 3); v[2] != 1 {
		t.Errorf("endpoint = %g, want exactly 1", v[2])
	}
}

func TestArange(t *testing.T) {
	v := Arange(0, 300, 60)
	if len(v) != 6 {
		t.Fatalf("len = %d, want 6 (stop inclusive)", len(v))
	}
	if v[0] != 0 || v[5] != 300 {
		t.Errorf("range = [%g, %g], want [0, 300]", v[0], v[5])
	}
}

func TestEddyTruthsStartAtOrigin(t *testing.T) {
	ep := DefaultEddyParams()
	checks := []func(x0, y0, t float64, ep EddyParams) (float64, float64){
		TruthStationary, TruthMoving, TruthDecaying,
	}
	for i, truth := range checks {
		lon, lat := truth(12000, 12500, 0, ep)
		if math.Abs(lon-12000) > 1e-9 || math.Abs(lat-12500) > 1e-9 {
			t.Errorf("truth %d at t=0 = (%g, %g), want the release point", i, lon, lat)
		}
	}
}

func TestStationaryEddyField(t *testing.T) {
	ep := DefaultEddyParams()
	fs, err := StationaryEddy(20, 20, 3600, ep)
	if err != nil {
		t.Fatalf("StationaryEddy failed: %v", err)
	}
	g := fs.Grid()
	if g.Lon.Len() != 20 || g.Lat.Len() != 20 {
		t.Errorf("axes %d x %d, want 20 x 20", g.Lon.Len(), g.Lat.Len())
	}
	if g.Time.Len() != 61 {
		t.Errorf("time snapshots = %d, want 61 (one per minute, ends inclusive)", g.Time.Len())
	}
	// The flow is spatially uniform; at release it points due east at U0.
	h := grid.NewHint()
	u, v, err := fs.SampleUV(0, 0, 12500, 12500, h)
	if err != nil {
		t.Fatalf("SampleUV failed: %v", err)
	}
	if math.Abs(u-ep.U0) > 1e-12 || math.Abs(v) > 1e-12 {
		t.Errorf("velocity at t=0 = (%g, %g), want (%g, 0)", u, v, ep.U0)
	}
	u, v, err = fs.SampleUV(1800, 0, 12500, 12500, h)
	if err != nil {
		t.Fatalf("SampleUV failed: %v", err)
	}
	if math.Abs(u-ep.U0*math.Cos(ep.F*1800)) > 1e-9 {
		t.Errorf("u(1800) = %g, want %g", u, ep.U0*math.Cos(ep.F*1800))
	}
}

func TestPeriodicAxes(t *testing.T) {
	fs, err := Periodic(10, 10, 1, 0)
	if err != nil {
		t.Fatalf("Periodic failed: %v", err)
	}
	g := fs.Grid()
	if g.Mesh != grid.MeshSpherical {
		t.Error("periodic channel should use spherical distances")
	}
	lon := g.Lon.Vals()
	if len(lon) != 10 {
		t.Fatalf("lon axis has %d points, want 10", len(lon))
	}
	if lon[0] != 0.1 || lon[9] != 1 {
		t.Errorf("lon range = [%g, %g], want [0.1, 1]", lon[0], lon[9])
	}
	// First point sits one spacing above zero so the seam wraps cleanly.
	spacing := lon[1] - lon[0]
	if math.Abs(lon[0]-spacing) > 1e-12 {
		t.Errorf("first point %g should be one spacing %g above the seam", lon[0], spacing)
	}
}

func TestZonalShearProfile(t *testing.T) {
	fs, err := ZonalShear(Linspace(0, 1e4, 2), Linspace(0, 1e4, 2), Linspace(0, 1, 3))
	if err != nil {
		t.Fatalf("ZonalShear failed: %v", err)
	}
	h := grid.NewHint()
	for _, tc := range []struct{ depth, want float64 }{{0, 0}, {0.5, 0.5}, {1, 1}} {
		u, _, err := fs.SampleUV(0, tc.depth, 5000, 5000, h)
		if err != nil {
			t.Fatalf("SampleUV at depth %g failed: %v", tc.depth, err)
		}
		if math.Abs(u-tc.want) > 1e-12 {
			t.Errorf("u(depth=%g) = %g, want %g", tc.depth, u, tc.want)
		}
	}
}

func TestMovingEddiesField(t *testing.T) {
	fs, err := MovingEddies(100, 175)
	if err != nil {
		t.Fatalf("MovingEddies failed: %v", err)
	}
	if fs.Grid().Mesh != grid.MeshSpherical {
		t.Error("moving eddies should live on a spherical mesh")
	}
	if _, ok := fs.Field("P"); !ok {
		t.Error("moving eddies should carry the sea surface height field P")
	}
	if fs.Grid().Time.Len() != 25 {
		t.Errorf("time snapshots = %d, want 25 (daily over 24 days inclusive)", fs.Grid().Time.Len())
	}
	// Geostrophic balance: the flow circles the pressure bumps, so the
	// domain-mean speed is nonzero but bounded.
	h := grid.NewHint()
	u, v, err := fs.SampleUV(0, 0, 47, 1, h)
	if err != nil {
		t.Fatalf("SampleUV failed: %v", err)
	}
	speed := math.Hypot(u, v)
	if math.IsNaN(speed) || math.IsInf(speed, 0) {
		t.Fatalf("velocity = (%g, %g), not finite", u, v)
	}
}
