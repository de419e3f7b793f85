package grid

import (
	"fmt"
	"math"
)

// Side classifies a query coordinate against an axis range.
type Side int

const (
	Inside Side = iota
	BelowMin
	AboveMax
)

// Axis is one monotonic coordinate sequence of a structured grid. The
// sequence may be strictly increasing or strictly decreasing; an axis with a
// single value is degenerate and behaves as a constant-broadcast dimension.
type Axis struct {
	vals      []float64
	ascending bool
}

func NewAxis(vals []float64) (*Axis, error) {
	if len(vals) == 0 {
		return nil, fmt.Errorf("grid: axis needs at least one coordinate")
	}
	a := &Axis{vals: append([]float64(nil), vals...), ascending: true}
	if len(vals) > 1 {
		a.ascending = vals[1] > vals[0]
		for i := 1; i < len(vals); i++ {
			if a.ascending && vals[i] <= vals[i-1] {
				return nil, fmt.Errorf("grid: axis not strictly increasing at index %d", i)
			}
			if !a.ascending && vals[i] >= vals[i-1] {
				return nil, fmt.Errorf("grid: axis not strictly decreasing at index %d", i)
			}
		}
	}
	return a, nil
}

func (a *Axis) Len() int         { return len(a.vals) }
func (a *Axis) Degenerate() bool { return len(a.vals) == 1 }
func (a *Axis) Vals() []float64  { return a.vals }
func (a *Axis) At(i int) float64 { return a.vals[i] }
func (a *Axis) Ascending() bool  { return a.ascending }

// Min and Max are the numeric extremes regardless of axis direction.
func (a *Axis) Min() float64 {
	if a.ascending {
		return a.vals[0]
	}
	return a.vals[len(a.vals)-1]
}

func (a *Axis) Max() float64 {
	if a.ascending {
		return a.vals[len(a.vals)-1]
	}
	return a.vals[0]
}

// Classify reports where x lies relative to the axis range. Degenerate axes
// accept every coordinate.
func (a *Axis) Classify(x float64) Side {
	if a.Degenerate() {
		return Inside
	}
	if x < a.Min() {
		return BelowMin
	}
	if x > a.Max() {
		return AboveMax
	}
	return Inside
}

// Locate finds the cell [i, i+1] bracketing x and the fractional offset of x
// within it. hint is the index returned by a previous call and is tried
// first, so that the usual monotone query sequence of a moving particle
// avoids a full search; pass a negative hint to force one. The hint cell is
// preferred even when x sits exactly on one of its edges, which is what lets
// a caller steer a boundary query into a chosen neighbour cell. ok is false
// when x is outside the bracketable range.
func (a *Axis) Locate(x float64, hint int) (i int, frac float64, ok bool) {
	if a.Degenerate() {
		return 0, 0, true
	}
	n := len(a.vals)
	if a.Classify(x) != Inside {
		return 0, 0, false
	}
	if hint >= 0 && hint < n-1 && a.inCell(x, hint) {
		return hint, a.frac(x, hint), true
	}
	// Walk one cell from the hint before falling back to bisection.
	if hint >= 0 {
		if hint+1 < n-1 && a.inCell(x, hint+1) {
			return hint + 1, a.frac(x, hint+1), true
		}
		if hint-1 >= 0 && a.inCell(x, hint-1) {
			return hint - 1, a.frac(x, hint-1), true
		}
	}
	lo, hi := 0, n-1
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if (a.vals[mid] <= x) == a.ascending || a.vals[mid] == x {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo, a.frac(x, lo), true
}

// LocateClamped behaves like Locate but clamps out-of-range queries to the
// nearest boundary cell, for callers that extrapolate by holding end values.
func (a *Axis) LocateClamped(x float64, hint int) (i int, frac float64) {
	if a.Degenerate() {
		return 0, 0
	}
	switch a.Classify(x) {
	case BelowMin:
		if a.ascending {
			return 0, 0
		}
		return len(a.vals) - 2, 1
	case AboveMax:
		if a.ascending {
			return len(a.vals) - 2, 1
		}
		return 0, 0
	}
	i, frac, _ = a.Locate(x, hint)
	return i, frac
}

func (a *Axis) inCell(x float64, i int) bool {
	lo, hi := a.vals[i], a.vals[i+1]
	if a.ascending {
		return lo <= x && x <= hi
	}
	return hi <= x && x <= lo
}

func (a *Axis) frac(x float64, i int) float64 {
	d := a.vals[i+1] - a.vals[i]
	if d == 0 {
		return 0
	}
	return (x - a.vals[i]) / d
}

// ExtendPeriodic returns a copy of the axis with halosize cells appended at
// both ends. Appended coordinates are offset by one full period so that the
// spacing across the halo boundary stays consistent with the interior.
func (a *Axis) ExtendPeriodic(halosize int) (*Axis, error) {
	n := len(a.vals)
	if halosize <= 0 || halosize > n {
		return nil, fmt.Errorf("grid: invalid halo size %d for axis of length %d", halosize, n)
	}
	if a.Degenerate() {
		return nil, fmt.Errorf("grid: cannot extend degenerate axis")
	}
	period := a.vals[n-1] - 2*a.vals[0] + a.vals[1]
	out := make([]float64, 0, n+2*halosize)
	for i := n - halosize; i < n; i++ {
		out = append(out, a.vals[i]-period)
	}
	out = append(out, a.vals...)
	for i := 0; i < halosize; i++ {
		out = append(out, a.vals[i]+period)
	}
	return NewAxis(out)
}

// Span is the coordinate extent of the axis, zero for degenerate axes.
func (a *Axis) Span() float64 {
	return math.Abs(a.vals[len(a.vals)-1] - a.vals[0])
}
