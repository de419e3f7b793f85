package field

import (
	"math"
	"testing"

	"github.com/onsi/gomega"

	"github.com/Eisbrenner/parcels/internal/grid"
)

func mustFieldSet(t *testing.T, data map[string]*Array, dims Dimensions, opts ...Option) *FieldSet {
	t.Helper()
	fs, err := FromData(data, dims, opts...)
	if err != nil {
		t.Fatalf("FromData failed: %v", err)
	}
	return fs
}

func TestFromData_RequiresUV(t *testing.T) {
	dims := Dimensions{Lon: []float64{0, 1}, Lat: []float64{0, 1}}
	_, err := FromData(map[string]*Array{"U": Uniform(1, 1, 1, 2, 2)}, dims)
	if err == nil {
		t.Error("expected error for missing V")
	}
	_, err = FromData(map[string]*Array{"U": nil, "V": nil}, dims)
	if err == nil {
		t.Error("expected error for nil arrays")
	}
}

func TestFromData_ShapeMismatch(t *testing.T) {
	dims := Dimensions{Lon: []float64{0, 1, 2}, Lat: []float64{0, 1}}
	_, err := FromData(map[string]*Array{
		"U": Uniform(1, 1, 1, 2, 2), // nx=2, grid wants 3
		"V": Uniform(0, 1, 1, 2, 3),
	}, dims)
	if err == nil {
		t.Error("expected error for shape mismatch")
	}
}

func TestSample_LinearExactness(t *testing.T) {
	g := gomega.NewWithT(t)
	lon := []float64{0, 1, 2, 3, 4}
	lat := []float64{0, 2, 4, 6}
	// U = 3x + y is reproduced exactly by bilinear interpolation.
	data := map[string]*Array{
		"U": Fill(1, 1, len(lat), len(lon), func(_, _, yi, xi int) float64 {
			return 3*lon[xi] + lat[yi]
		}),
		"V": Uniform(0, 1, 1, len(lat), len(lon)),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lat})

	h := grid.NewHint()
	for _, pt := range [][2]float64{{0.5, 1}, {1.25, 3.5}, {3.9, 0.1}, {4, 6}, {0, 0}} {
		u, err := fs.U.Sample(0, 0, pt[1], pt[0], h)
		g.Expect(err).NotTo(gomega.HaveOccurred())
		g.Expect(u).To(gomega.BeNumerically("~", 3*pt[0]+pt[1], 1e-12))
	}
}

func TestSample_Nearest(t *testing.T) {
	lon := []float64{0, 1, 2}
	lat := []float64{0, 1}
	data := map[string]*Array{
		"U": Fill(1, 1, 2, 3, func(_, _, yi, xi int) float64 { return float64(xi) }),
		"V": Uniform(0, 1, 1, 2, 3),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lat})
	if err := fs.SetInterpMethod("U", InterpNearest); err != nil {
		t.Fatalf("SetInterpMethod failed: %v", err)
	}

	h := grid.NewHint()
	u, err := fs.U.Sample(0, 0, 0.2, 1.4, h)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	if u != 1 {
		t.Errorf("nearest sample = %g, want 1", u)
	}
	u, _ = fs.U.Sample(0, 0, 0.2, 1.6, h)
	if u != 2 {
		t.Errorf("nearest sample = %g, want 2", u)
	}
}

func TestSample_TimeBlending(t *testing.T) {
	g := gomega.NewWithT(t)
	lon := []float64{0, 1}
	lat := []float64{0, 1}
	times := []float64{0, 100}
	// U is 1 at t=0 and 3 at t=100, uniform in space.
	data := map[string]*Array{
		"U": Fill(2, 1, 2, 2, func(ti, _, _, _ int) float64 { return 1 + 2*float64(ti) }),
		"V": Uniform(0, 2, 1, 2, 2),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lat, Time: times})

	h := grid.NewHint()
	for _, tc := range []struct{ t, want float64 }{{0, 1}, {25, 1.5}, {50, 2}, {100, 3}} {
		u, err := fs.U.Sample(tc.t, 0, 0.5, 0.5, h)
		g.Expect(err).NotTo(gomega.HaveOccurred())
		g.Expect(u).To(gomega.BeNumerically("~", tc.want, 1e-12), "t=%g", tc.t)
	}

	// Outside the snapshot range the sample fails unless extrapolation is on.
	_, err := fs.U.Sample(101, 0, 0.5, 0.5, h)
	g.Expect(err).To(gomega.MatchError(ErrOutOfBounds))

	fsx := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lat, Time: times}, WithTimeExtrapolation())
	u, err := fsx.U.Sample(500, 0, 0.5, 0.5, grid.NewHint())
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(u).To(gomega.BeNumerically("~", 3, 1e-12))
}

func TestSample_DepthBoundaries(t *testing.T) {
	lon := []float64{0, 1}
	lat := []float64{0, 1}
	depth := []float64{0, 50, 100}
	data := map[string]*Array{
		"U": Uniform(1, 1, 3, 2, 2),
		"V": Uniform(0, 1, 3, 2, 2),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lat, Depth: depth})

	h := grid.NewHint()
	if _, err := fs.U.Sample(0, -1, 0.5, 0.5, h); err != ErrThroughSurface {
		t.Errorf("above surface: err = %v, want ErrThroughSurface", err)
	}
	h.Invalidate()
	if _, err := fs.U.Sample(0, 101, 0.5, 0.5, h); err != ErrOutOfBounds {
		t.Errorf("below bottom: err = %v, want ErrOutOfBounds", err)
	}
	h.Invalidate()
	if _, err := fs.U.Sample(0, 100, 0.5, 0.5, h); err != nil {
		t.Errorf("bottom edge inclusive: %v", err)
	}
}

func TestSample_SphericalConversion(t *testing.T) {
	g := gomega.NewWithT(t)
	lon := []float64{0, 10}
	lat := []float64{-80, 0, 80}
	// 1 m/s everywhere, in degrees on a spherical mesh.
	data := map[string]*Array{
		"U": Uniform(1, 1, 1, 3, 2),
		"V": Uniform(1, 1, 1, 3, 2),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lat}, WithMesh(grid.MeshSpherical))

	perDeg := 1852.0 * 60.0
	h := grid.NewHint()
	u, v, err := fs.SampleUV(0, 0, 0, 5, h)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(u).To(gomega.BeNumerically("~", 1/perDeg, 1e-15))
	g.Expect(v).To(gomega.BeNumerically("~", 1/perDeg, 1e-15))

	// Toward the poles the zonal conversion grows with 1/cos(lat) while the
	// meridional one is latitude independent.
	u60, v60, err := fs.SampleUV(0, 0, 60, 5, h)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(u60).To(gomega.BeNumerically("~", 1/(perDeg*math.Cos(60*math.Pi/180)), 1e-12))
	g.Expect(u60 / u).To(gomega.BeNumerically("~", 2, 1e-9))
	g.Expect(v60).To(gomega.BeNumerically("~", v, 1e-15))
}

func TestFromData_Transpose(t *testing.T) {
	lon := []float64{0, 1, 2}
	lat := []float64{0, 1}
	// Space-major input: shape (lon, lat), value = 10*xi + yi.
	arr := &Array{Shape: []int{3, 2}, Data: []float64{0, 1, 10, 11, 20, 21}}
	zero := &Array{Shape: []int{3, 2}, Data: make([]float64, 6)}
	fs := mustFieldSet(t, map[string]*Array{"U": arr, "V": zero},
		Dimensions{Lon: lon, Lat: lat}, WithTranspose())

	h := grid.NewHint()
	for _, tc := range []struct{ x, y, want float64 }{{0, 0, 0}, {2, 1, 21}, {1, 0, 10}, {2, 0, 20}} {
		u, err := fs.U.Sample(0, 0, tc.y, tc.x, h)
		if err != nil {
			t.Fatalf("Sample(%g, %g) failed: %v", tc.x, tc.y, err)
		}
		if math.Abs(u-tc.want) > 1e-12 {
			t.Errorf("Sample(%g, %g) = %g, want %g", tc.x, tc.y, u, tc.want)
		}
	}
}

// A staggered component interpolates only along its own axis: U values are
// west/east face values, constant in the transverse direction within a cell.
func TestSample_CGridStaggering(t *testing.T) {
	g := gomega.NewWithT(t)
	lon := []float64{0, 1, 2}
	lat := []float64{0, 1, 2}
	// U depends on row index only; bilinear sampling would blend rows.
	data := map[string]*Array{
		"U": Fill(1, 1, 3, 3, func(_, _, yi, _ int) float64 { return float64(yi) }),
		"V": Uniform(0.25, 1, 1, 3, 3),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lat})
	for _, name := range []string{"U", "V"} {
		if err := fs.SetInterpMethod(name, InterpCGridVelocity); err != nil {
			t.Fatalf("SetInterpMethod(%s) failed: %v", name, err)
		}
	}

	h := grid.NewHint()
	// Mid-cell in y: staggered U reads the cell's own faces (row 0).
	u, err := fs.U.Sample(0, 0, 0.5, 0.5, h)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(u).To(gomega.BeNumerically("~", 0.0, 1e-12))

	// A spatially uniform staggered field reproduces the input exactly.
	v, err := fs.V.Sample(0, 0, 0.3, 1.7, h)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(v).To(gomega.BeNumerically("~", 0.25, 1e-12))
}

func TestAddPeriodicHalo_Zonal(t *testing.T) {
	g := gomega.NewWithT(t)
	n := 10
	lon := make([]float64, n)
	lat := make([]float64, n)
	for i := 0; i < n; i++ {
		lon[i] = float64(i+1) / float64(n)
		lat[i] = float64(i+1) / float64(n)
	}
	data := map[string]*Array{
		"U": Fill(1, 1, n, n, func(_, _, _, xi int) float64 { return lon[xi] }),
		"V": Uniform(0, 1, 1, n, n),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lat})
	if err := fs.AddPeriodicHalo(true, false, 5); err != nil {
		t.Fatalf("AddPeriodicHalo failed: %v", err)
	}

	g.Expect(fs.Grid().Lon.Len()).To(gomega.Equal(n + 10))
	g.Expect(fs.Grid().Lat.Len()).To(gomega.Equal(n))

	// Beyond the original seam the halo serves the wrapped value.
	h := grid.NewHint()
	u, err := fs.U.Sample(0, 0, 0.5, 1.1, h)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	g.Expect(u).To(gomega.BeNumerically("~", 0.1, 1e-9))
	h.Invalidate()
	u, err = fs.U.Sample(0, 0, 0.5, 0.05, h)
	g.Expect(err).NotTo(gomega.HaveOccurred())
	// Halfway between the wrapped 1.0 node at 0.0 and the 0.1 node.
	g.Expect(u).To(gomega.BeNumerically("~", 0.55, 1e-9))
}

func TestFreeze_BlocksAdminOps(t *testing.T) {
	lon := []float64{0.1, 0.2, 0.3}
	data := map[string]*Array{
		"U": Uniform(1, 1, 1, 3, 3),
		"V": Uniform(0, 1, 1, 3, 3),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lon})
	fs.Freeze()
	if err := fs.SetInterpMethod("U", InterpNearest); err == nil {
		t.Error("SetInterpMethod should fail on a frozen fieldset")
	}
	if err := fs.AddPeriodicHalo(true, false, 0); err == nil {
		t.Error("AddPeriodicHalo should fail on a frozen fieldset")
	}
}

func TestSampleW_MissingFieldIsZero(t *testing.T) {
	lon := []float64{0, 1}
	data := map[string]*Array{
		"U": Uniform(1, 1, 1, 2, 2),
		"V": Uniform(0, 1, 1, 2, 2),
	}
	fs := mustFieldSet(t, data, Dimensions{Lon: lon, Lat: lon})
	w, err := fs.SampleW(0, 0, 0.5, 0.5, grid.NewHint())
	if err != nil || w != 0 {
		t.Errorf("SampleW = (%g, %v), want (0, nil)", w, err)
	}
}
