package diag

import (
	"math"
	"testing"

	"github.com/Eisbrenner/parcels/internal/particle"
)

func ensemble(positions [][3]float64) []*particle.Particle {
	ps := make([]*particle.Particle, len(positions))
	for i, pos := range positions {
		ps[i] = particle.New(i, pos[0], pos[1], pos[2], 0)
	}
	return ps
}

func TestCollectorMeansAndSpread(t *testing.T) {
	c := NewCollector()
	c.Observe(0, ensemble([][3]float64{
		{0, 0, 0},
		{2, 0, 0},
	}))
	s := c.Samples()[0]
	if s.Count != 2 {
		t.Errorf("count = %d, want 2", s.Count)
	}
	if s.MeanLon != 1 || s.MeanLat != 0 || s.MeanDepth != 0 {
		t.Errorf("centre = (%g, %g, %g), want (1, 0, 0)", s.MeanLon, s.MeanLat, s.MeanDepth)
	}
	// Both particles sit one unit from the centre.
	if math.Abs(s.Spread-1) > 1e-12 {
		t.Errorf("spread = %g, want 1", s.Spread)
	}
}

func TestCollectorEmptyEnsemble(t *testing.T) {
	c := NewCollector()
	c.Observe(10, nil)
	s := c.Samples()[0]
	if s.Time != 10 || s.Count != 0 || s.Spread != 0 {
		t.Errorf("empty sample = %+v, want zeroed stats at t=10", s)
	}
}

func TestCollectorDisplacement(t *testing.T) {
	c := NewCollector()
	if c.Displacement() != 0 {
		t.Error("displacement with no samples should be zero")
	}
	c.Observe(0, ensemble([][3]float64{{0, 0, 0}}))
	if c.Displacement() != 0 {
		t.Error("displacement with one sample should be zero")
	}
	c.Observe(100, ensemble([][3]float64{{3, 4, 0}}))
	if math.Abs(c.Displacement()-5) > 1e-12 {
		t.Errorf("displacement = %g, want 5", c.Displacement())
	}
}

func TestCollectorSeriesAndReset(t *testing.T) {
	c := NewCollector()
	c.Observe(0, ensemble([][3]float64{{1, 0, 0}}))
	c.Observe(60, ensemble([][3]float64{{2, 0, 0}}))
	lons := c.Series(func(s Sample) float64 { return s.MeanLon })
	if len(lons) != 2 || lons[0] != 1 || lons[1] != 2 {
		t.Errorf("series = %v, want [1 2]", lons)
	}
	times := c.Series(func(s Sample) float64 { return s.Time })
	if times[1] != 60 {
		t.Errorf("times = %v, want second checkpoint at 60", times)
	}
	c.Reset()
	if len(c.Samples()) != 0 {
		t.Error("Reset should discard collected samples")
	}
}
