// Package pset drives an ensemble of particles through a flow field. It
// owns the particle lifecycle: creation, the per-step error/recovery state
// machine, and end-of-step removal of deleted particles.
package pset

import (
	"fmt"

	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/particle"
)

// ParticleSet is an insertion-ordered collection of particles bound to one
// FieldSet for the lifetime of a run. Particles flagged Delete are removed
// only at the end of an outer step, never mid-step, so iteration order and
// indices stay stable while a step is in flight.
type ParticleSet struct {
	fs        *field.FieldSet
	particles []*particle.Particle
	nextID    int
}

// New builds a set with one particle per position. depths may be nil for
// surface releases; all slices must otherwise share a length.
func New(fs *field.FieldSet, lons, lats, depths []float64) (*ParticleSet, error) {
	if len(lats) != len(lons) {
		return nil, fmt.Errorf("pset: %d lons but %d lats", len(lons), len(lats))
	}
	if depths != nil && len(depths) != len(lons) {
		return nil, fmt.Errorf("pset: %d lons but %d depths", len(lons), len(depths))
	}
	s := &ParticleSet{fs: fs}
	for i := range lons {
		depth := 0.0
		if depths != nil {
			depth = depths[i]
		}
		s.Add(lons[i], lats[i], depth, 0)
	}
	return s, nil
}

// Add appends a particle; only valid before a run starts.
func (s *ParticleSet) Add(lon, lat, depth, time float64) *particle.Particle {
	p := particle.New(s.nextID, lon, lat, depth, time)
	s.nextID++
	s.particles = append(s.particles, p)
	return p
}

func (s *ParticleSet) FieldSet() *field.FieldSet { return s.fs }

func (s *ParticleSet) Len() int { return len(s.particles) }

// Particles exposes the live particles in insertion order. The slice is
// owned by the set; callers must not grow or reorder it.
func (s *ParticleSet) Particles() []*particle.Particle { return s.particles }

// Lons, Lats and Depths snapshot the respective coordinates in order.
func (s *ParticleSet) Lons() []float64 { return s.collect(func(p *particle.Particle) float64 { return p.Lon }) }
func (s *ParticleSet) Lats() []float64 { return s.collect(func(p *particle.Particle) float64 { return p.Lat }) }
func (s *ParticleSet) Depths() []float64 {
	return s.collect(func(p *particle.Particle) float64 { return p.Depth })
}

func (s *ParticleSet) collect(get func(*particle.Particle) float64) []float64 {
	out := make([]float64, len(s.particles))
	for i, p := range s.particles {
		out[i] = get(p)
	}
	return out
}

// compact removes particles flagged Delete, preserving insertion order.
// Runs once per outer step boundary.
func (s *ParticleSet) compact() {
	live := s.particles[:0]
	for _, p := range s.particles {
		if p.State != particle.Delete {
			live = append(live, p)
		}
	}
	for i := len(live); i < len(s.particles); i++ {
		s.particles[i] = nil
	}
	s.particles = live
}
