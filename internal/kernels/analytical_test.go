package kernels

import (
	"errors"
	"math"
	"testing"

	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/particle"
)

// staggeredFlow builds a fieldset whose U values are west-face values per
// cell column, flagged cgrid_velocity.
func staggeredFlow(t *testing.T, lon []float64, uFace func(xi int) float64) *field.FieldSet {
	t.Helper()
	lat := []float64{0, 1, 2}
	n := len(lon)
	fs, err := field.FromData(map[string]*field.Array{
		"U": field.Fill(1, 1, 3, n, func(_, _, _, xi int) float64 { return uFace(xi) }),
		"V": field.Uniform(0, 1, 1, 3, n),
	}, field.Dimensions{Lon: lon, Lat: lat})
	if err != nil {
		t.Fatalf("FromData failed: %v", err)
	}
	for _, name := range []string{"U", "V"} {
		if err := fs.SetInterpMethod(name, field.InterpCGridVelocity); err != nil {
			t.Fatalf("SetInterpMethod failed: %v", err)
		}
	}
	return fs
}

func TestAnalytical_RejectsNodeCenteredFields(t *testing.T) {
	fs := uniformFlow(t, 1, 0) // linear interpolation, no staggering
	p := particle.New(0, 100, 100, 0, 0)
	p.Dt = 10

	st, err := NewAnalytical().Evaluate(p, fs, 0)
	if err == nil {
		t.Fatal("expected fatal error on node-centred fields")
	}
	if !errors.Is(err, field.ErrUnsupportedInterp) {
		t.Errorf("err = %v, want ErrUnsupportedInterp", err)
	}
	if st != particle.Error {
		t.Errorf("state = %s, want Error", st)
	}
}

func TestAnalytical_UniformFlowCrossesCells(t *testing.T) {
	lon := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	fs := staggeredFlow(t, lon, func(int) float64 { return 1 })

	p := particle.New(0, 0.25, 1, 0, 0)
	p.Dt = 3.5
	st, err := NewAnalytical().Evaluate(p, fs, 0)
	if err != nil || st != particle.Success {
		t.Fatalf("Evaluate = (%s, %v), want Success", st, err)
	}
	if math.Abs(p.Lon-3.75) > 1e-9 {
		t.Errorf("lon = %g, want 3.75", p.Lon)
	}
	if math.Abs(p.Lat-1) > 1e-12 {
		t.Errorf("lat = %g, want unchanged 1", p.Lat)
	}
}

func TestAnalytical_LinearShearIsExponential(t *testing.T) {
	// U faces equal their coordinate, so dx/dt = x and x(t) = x0 * e^t.
	lon := make([]float64, 11)
	for i := range lon {
		lon[i] = float64(i)
	}
	fs := staggeredFlow(t, lon, func(xi int) float64 { return lon[xi] })

	p := particle.New(0, 0.5, 1, 0, 0)
	p.Dt = 2
	st, err := NewAnalytical().Evaluate(p, fs, 0)
	if err != nil || st != particle.Success {
		t.Fatalf("Evaluate = (%s, %v), want Success", st, err)
	}
	want := 0.5 * math.Exp(2)
	if math.Abs(p.Lon-want)/want > 1e-9 {
		t.Errorf("lon = %g, want %g", p.Lon, want)
	}
}

func TestAnalytical_BackwardIntegration(t *testing.T) {
	lon := []float64{0, 1, 2, 3, 4, 5}
	fs := staggeredFlow(t, lon, func(int) float64 { return 1 })

	p := particle.New(0, 4.5, 1, 0, 10)
	p.Dt = -2
	st, err := NewAnalytical().Evaluate(p, fs, 10)
	if err != nil || st != particle.Success {
		t.Fatalf("Evaluate = (%s, %v), want Success", st, err)
	}
	if math.Abs(p.Lon-2.5) > 1e-9 {
		t.Errorf("lon = %g, want 2.5", p.Lon)
	}
}

func TestAnalytical_DomainExit(t *testing.T) {
	lon := []float64{0, 1, 2, 3, 4, 5}
	fs := staggeredFlow(t, lon, func(int) float64 { return 1 })

	p := particle.New(0, 4.5, 1, 0, 0)
	p.Dt = 10
	st, err := NewAnalytical().Evaluate(p, fs, 0)
	if err != nil {
		t.Fatalf("domain exit should not be fatal: %v", err)
	}
	if st != particle.ErrorOutOfBounds {
		t.Errorf("state = %s, want ErrorOutOfBounds", st)
	}
	// The particle stops on the boundary face it could not cross.
	if math.Abs(p.Lon-5) > 1e-9 {
		t.Errorf("lon = %g, want 5 (stopped at the boundary)", p.Lon)
	}
}

func TestAnalytical_StagnationNeverExits(t *testing.T) {
	// Opposing faces: velocity crosses zero inside the cell, the particle
	// converges on the stagnation point and consumes all of dt.
	lon := []float64{0, 1, 2}
	fs := staggeredFlow(t, lon, func(xi int) float64 {
		if xi == 0 {
			return 1
		}
		return -1
	})

	p := particle.New(0, 0.25, 1, 0, 0)
	p.Dt = 1000
	st, err := NewAnalytical().Evaluate(p, fs, 0)
	if err != nil || st != particle.Success {
		t.Fatalf("Evaluate = (%s, %v), want Success", st, err)
	}
	if p.Lon < 0.25 || p.Lon > 0.5 {
		t.Errorf("lon = %g, want within (0.25, 0.5]", p.Lon)
	}
}
