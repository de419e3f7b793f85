// Package diag computes run diagnostics from ensemble snapshots: centre of
// mass drift, dispersion and per-checkpoint population.
package diag

import (
	"math"

	"github.com/Eisbrenner/parcels/internal/particle"
)

// Sample is one checkpoint's aggregate view of the ensemble.
type Sample struct {
	Time      float64
	Count     int
	MeanLon   float64
	MeanLat   float64
	MeanDepth float64
	// Spread is the root mean square distance from the ensemble centre,
	// in coordinate units.
	Spread float64
}

// Collector accumulates one Sample per checkpoint. It implements the
// execution loop's Observer and is safe to reuse across runs after Reset.
type Collector struct {
	samples []Sample
}

func NewCollector() *Collector { return &Collector{} }

func (c *Collector) Observe(t float64, ps []*particle.Particle) {
	s := Sample{Time: t, Count: len(ps)}
	if len(ps) == 0 {
		c.samples = append(c.samples, s)
		return
	}
	for _, p := range ps {
		s.MeanLon += p.Lon
		s.MeanLat += p.Lat
		s.MeanDepth += p.Depth
	}
	n := float64(len(ps))
	s.MeanLon /= n
	s.MeanLat /= n
	s.MeanDepth /= n
	var sq float64
	for _, p := range ps {
		dx := p.Lon - s.MeanLon
		dy := p.Lat - s.MeanLat
		dz := p.Depth - s.MeanDepth
		sq += dx*dx + dy*dy + dz*dz
	}
	s.Spread = math.Sqrt(sq / n)
	c.samples = append(c.samples, s)
}

// Samples returns the collected checkpoints in order.
func (c *Collector) Samples() []Sample { return c.samples }

func (c *Collector) Reset() { c.samples = nil }

// Series extracts one column across the collected samples.
func (c *Collector) Series(get func(Sample) float64) []float64 {
	out := make([]float64, len(c.samples))
	for i, s := range c.samples {
		out[i] = get(s)
	}
	return out
}

// Displacement is the distance of the final ensemble centre from the first,
// in coordinate units; zero when fewer than two checkpoints exist.
func (c *Collector) Displacement() float64 {
	if len(c.samples) < 2 {
		return 0
	}
	a, b := c.samples[0], c.samples[len(c.samples)-1]
	dx := b.MeanLon - a.MeanLon
	dy := b.MeanLat - a.MeanLat
	dz := b.MeanDepth - a.MeanDepth
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
