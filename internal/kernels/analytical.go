package kernels

import (
	"fmt"
	"math"

	"github.com/Eisbrenner/parcels/internal/field"
	"github.com/Eisbrenner/parcels/internal/particle"
)

// Analytical advances a particle by closed-form integration, cell by cell.
// Within a cell each velocity component varies linearly between its two
// bounding faces, so the trajectory along each axis is exponential (or
// uniform when the faces agree) and the exit time through a face has an
// exact expression. Only defined for staggered cgrid_velocity fields; on
// node-centred layouts no closed form exists and the kernel fails fatally.
type Analytical struct{}

func NewAnalytical() *Analytical { return &Analytical{} }

func (*Analytical) Name() string { return "Analytical" }

func (*Analytical) Evaluate(p *particle.Particle, fs *field.FieldSet, t float64) (particle.State, error) {
	if err := requireStaggered(fs); err != nil {
		return particle.Error, err
	}
	sgn := 1.0
	if p.Dt < 0 {
		sgn = -1
	}
	remaining := math.Abs(p.Dt)
	for remaining > 0 {
		cell, err := fs.LocateCell(t, p.Depth, p.Lat, p.Lon, p.Hint)
		if err != nil {
			return boundaryState(err)
		}
		x := axisMotion{pos: p.Lon, lo: cell.XLo, hi: cell.XHi, vlo: sgn * cell.UW, vhi: sgn * cell.UE}
		y := axisMotion{pos: p.Lat, lo: cell.YLo, hi: cell.YHi, vlo: sgn * cell.VS, vhi: sgn * cell.VN}
		z := axisMotion{pos: p.Depth, lo: cell.ZLo, hi: cell.ZHi, vlo: sgn * cell.WT, vhi: sgn * cell.WB}

		tx, xTarget := x.exitTime()
		ty, yTarget := y.exitTime()
		tz, zTarget := z.exitTime()
		tMin := math.Min(tx, math.Min(ty, tz))

		tau := math.Min(tMin, remaining)
		p.Lon = x.advance(tau)
		p.Lat = y.advance(tau)
		p.Depth = z.advance(tau)
		if tMin > remaining {
			break
		}
		remaining -= tMin

		// Snap the crossing coordinate exactly onto the face and steer
		// the next cell search into the neighbour. Leaving the outermost
		// cell is a boundary exit.
		g := fs.Grid()
		if tx == tMin {
			p.Lon = xTarget
			next := neighbour(cell.Xi, xTarget == cell.XHi)
			if next < 0 || next > g.Lon.Len()-2 {
				return particle.ErrorOutOfBounds, nil
			}
			p.Hint.Xi = next
		}
		if ty == tMin {
			p.Lat = yTarget
			next := neighbour(cell.Yi, yTarget == cell.YHi)
			if next < 0 || next > g.Lat.Len()-2 {
				return particle.ErrorOutOfBounds, nil
			}
			p.Hint.Yi = next
		}
		if tz == tMin {
			p.Depth = zTarget
			next := neighbour(cell.Zi, zTarget == cell.ZHi)
			if next < 0 || next > g.Depth.Len()-2 {
				if p.Depth <= g.Depth.Min() {
					return particle.ErrorThroughSurface, nil
				}
				return particle.ErrorOutOfBounds, nil
			}
			p.Hint.Zi = next
		}
	}
	return particle.Success, nil
}

func requireStaggered(fs *field.FieldSet) error {
	for _, f := range []*field.Field{fs.U, fs.V, fs.W} {
		if f == nil {
			continue
		}
		if f.Interp != field.InterpCGridVelocity {
			return fmt.Errorf("%w: analytical advection needs cgrid_velocity on %s, got %s",
				field.ErrUnsupportedInterp, f.Name, f.Interp)
		}
	}
	return nil
}

func neighbour(i int, crossedHi bool) int {
	if crossedHi {
		return i + 1
	}
	return i - 1
}

// axisMotion is the one-dimensional problem of a coordinate moving through
// a cell under a velocity that is linear between the lo and hi face values.
// Degenerate axes arrive with infinite edges and equal face velocities, so
// motion along them is uniform and never exits.
type axisMotion struct {
	pos, lo, hi float64
	vlo, vhi    float64
}

func (m axisMotion) width() float64 { return m.hi - m.lo }

func (m axisMotion) beta() float64 {
	if math.IsInf(m.lo, -1) {
		return 0
	}
	return (m.vhi - m.vlo) / m.width()
}

func (m axisMotion) velocityAt(x float64) float64 {
	if math.IsInf(m.lo, -1) {
		return m.vlo
	}
	return m.vlo + m.beta()*(x-m.lo)
}

// exitTime is the time until pos reaches a cell edge, +Inf when the motion
// stalls before a face or the axis is unbounded.
func (m axisMotion) exitTime() (float64, float64) {
	v := m.velocityAt(m.pos)
	if v == 0 || math.IsInf(m.lo, -1) {
		return math.Inf(1), 0
	}
	// The edge in the direction of motion, valid for descending axes too.
	target := math.Min(m.lo, m.hi)
	if v > 0 {
		target = math.Max(m.lo, m.hi)
	}
	beta := m.beta()
	if math.Abs(beta) < 1e-14 {
		return (target - m.pos) / v, target
	}
	vt := m.velocityAt(target)
	if vt == 0 || vt/v <= 0 {
		// Velocity changes sign inside the cell: asymptotic approach to
		// the internal stagnation point, no exit.
		return math.Inf(1), 0
	}
	return math.Log(vt/v) / beta, target
}

// advance moves pos for time tau within the cell.
func (m axisMotion) advance(tau float64) float64 {
	v := m.velocityAt(m.pos)
	beta := m.beta()
	if math.Abs(beta) < 1e-14 {
		return m.pos + v*tau
	}
	return m.pos + v*(math.Exp(beta*tau)-1)/beta
}
