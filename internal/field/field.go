package field

import (
	"errors"

	"github.com/Eisbrenner/parcels/internal/grid"
)

// Sampling failures at domain boundaries. These surface as particle states
// in the execution loop rather than aborting a run; see the pset package.
var (
	// ErrOutOfBounds marks a query outside the bracketable lateral,
	// vertical (below the deepest level) or temporal range.
	ErrOutOfBounds = errors.New("field: sample out of bounds")

	// ErrThroughSurface marks a vertical query above the shallowest
	// registered depth, kept distinct so callers can clamp to the surface
	// instead of discarding the particle.
	ErrThroughSurface = errors.New("field: sample through surface")

	// ErrUnsupportedInterp marks a scheme/layout combination with no
	// defined semantics, e.g. analytical advection on bilinear fields.
	// Always fatal, never caught by a recovery map.
	ErrUnsupportedInterp = errors.New("field: unsupported interpolation configuration")
)

// InterpMethod selects how node values combine into a sample.
type InterpMethod string

const (
	InterpLinear        InterpMethod = "linear"
	InterpNearest       InterpMethod = "nearest"
	InterpCGridVelocity InterpMethod = "cgrid_velocity"
)

// Component tags a velocity field with its flow direction, which decides
// the staggered-face lookup under cgrid_velocity and the unit conversion on
// spherical meshes.
type Component int

const (
	ComponentNone Component = iota
	ComponentU
	ComponentV
	ComponentW
)

// Field is one named quantity sampled on a grid. Data is a dense row-major
// block indexed [time][depth][lat][lon]; values on A-grid layouts sit at the
// nodes, while cgrid_velocity reads them as the upstream cell-face values of
// the tagged component.
type Field struct {
	Name   string
	Interp InterpMethod

	grid        *grid.Grid
	data        []float64
	units       Converter
	component   Component
	allowExtrap bool
}

func (f *Field) Grid() *grid.Grid { return f.grid }

func (f *Field) at(ti, zi, yi, xi int) float64 {
	nz := f.grid.Depth.Len()
	ny := f.grid.Lat.Len()
	nx := f.grid.Lon.Len()
	return f.data[((ti*nz+zi)*ny+yi)*nx+xi]
}

// Sample interpolates the field at a space-time point. It is deterministic
// and side-effect-free apart from updating the search hint. Spatial
// interpolation runs on the two bracketing time slices, which then blend
// linearly; a degenerate time axis is constant in time.
func (f *Field) Sample(t, z, y, x float64, h *grid.Hint) (float64, error) {
	ti, tau, err := f.locateTime(t, h)
	if err != nil {
		return 0, err
	}
	h.Ti = ti
	v0, err := f.sampleSlice(ti, z, y, x, h)
	if err != nil {
		return 0, err
	}
	val := v0
	if tau > 0 && ti+1 < f.grid.Time.Len() {
		v1, err := f.sampleSlice(ti+1, z, y, x, h)
		if err != nil {
			return 0, err
		}
		val = (1-tau)*v0 + tau*v1
	}
	return f.units.ToTarget(val, z, y, x), nil
}

func (f *Field) locateTime(t float64, h *grid.Hint) (int, float64, error) {
	ax := f.grid.Time
	if ax.Degenerate() {
		return 0, 0, nil
	}
	if ti, tau, ok := ax.Locate(t, h.Ti); ok {
		return ti, tau, nil
	}
	if f.allowExtrap {
		ti, tau := ax.LocateClamped(t, h.Ti)
		return ti, tau, nil
	}
	return 0, 0, ErrOutOfBounds
}

func (f *Field) locateDepth(z float64, h *grid.Hint) (int, float64, error) {
	ax := f.grid.Depth
	zi, zeta, ok := ax.Locate(z, h.Zi)
	if !ok {
		// Depth increases downward, so crossing the numeric minimum is
		// an upward exit through the surface.
		if ax.Classify(z) == grid.BelowMin {
			return 0, 0, ErrThroughSurface
		}
		return 0, 0, ErrOutOfBounds
	}
	h.Zi = zi
	return zi, zeta, nil
}

func (f *Field) locateLateral(y, x float64, h *grid.Hint) (yi int, eta float64, xi int, xsi float64, err error) {
	var ok bool
	yi, eta, ok = f.grid.Lat.Locate(y, h.Yi)
	if !ok {
		return 0, 0, 0, 0, ErrOutOfBounds
	}
	xi, xsi, ok = f.grid.Lon.Locate(x, h.Xi)
	if !ok {
		return 0, 0, 0, 0, ErrOutOfBounds
	}
	h.Yi, h.Xi = yi, xi
	return yi, eta, xi, xsi, nil
}

func (f *Field) sampleSlice(ti int, z, y, x float64, h *grid.Hint) (float64, error) {
	zi, zeta, err := f.locateDepth(z, h)
	if err != nil {
		return 0, err
	}
	yi, eta, xi, xsi, err := f.locateLateral(y, x, h)
	if err != nil {
		return 0, err
	}
	switch f.Interp {
	case InterpNearest:
		return f.at(ti, pick(zi, zeta, f.grid.Depth), pick(yi, eta, f.grid.Lat), pick(xi, xsi, f.grid.Lon)), nil
	case InterpCGridVelocity:
		return f.sampleStaggered(ti, zi, zeta, yi, eta, xi, xsi)
	default:
		return f.trilinear(ti, zi, zeta, yi, eta, xi, xsi), nil
	}
}

// pick chooses the nearest of the two bracketing nodes.
func pick(i int, frac float64, ax *grid.Axis) int {
	if frac < 0.5 || ax.Degenerate() {
		return i
	}
	return i + 1
}

// trilinear combines the up-to-eight enclosing node values. A degenerate
// axis contributes no term: its fraction is zero and its upper index clamps
// onto the lower one.
func (f *Field) trilinear(ti, zi int, zeta float64, yi int, eta float64, xi int, xsi float64) float64 {
	zi1 := clampIdx(zi+1, f.grid.Depth)
	yi1 := clampIdx(yi+1, f.grid.Lat)
	xi1 := clampIdx(xi+1, f.grid.Lon)
	interp2D := func(zz int) float64 {
		return (1-eta)*((1-xsi)*f.at(ti, zz, yi, xi)+xsi*f.at(ti, zz, yi, xi1)) +
			eta*((1-xsi)*f.at(ti, zz, yi1, xi)+xsi*f.at(ti, zz, yi1, xi1))
	}
	v := interp2D(zi)
	if zeta > 0 {
		v = (1-zeta)*v + zeta*interp2D(zi1)
	}
	return v
}

// sampleStaggered reads the component from the two cell faces that bound
// the enclosing cell along the component's own axis, weighted by the
// fractional coordinate between those faces and constant in the transverse
// directions. A spatially uniform staggered field therefore reproduces the
// exact input value, which bilinear averaging would not.
func (f *Field) sampleStaggered(ti, zi int, zeta float64, yi int, eta float64, xi int, xsi float64) (float64, error) {
	zi1 := clampIdx(zi+1, f.grid.Depth)
	yi1 := clampIdx(yi+1, f.grid.Lat)
	xi1 := clampIdx(xi+1, f.grid.Lon)
	switch f.component {
	case ComponentU:
		return (1-xsi)*f.at(ti, zi, yi, xi) + xsi*f.at(ti, zi, yi, xi1), nil
	case ComponentV:
		return (1-eta)*f.at(ti, zi, yi, xi) + eta*f.at(ti, zi, yi1, xi), nil
	case ComponentW:
		return (1-zeta)*f.at(ti, zi, yi, xi) + zeta*f.at(ti, zi1, yi, xi), nil
	default:
		return 0, ErrUnsupportedInterp
	}
}

func clampIdx(i int, ax *grid.Axis) int {
	if i >= ax.Len() {
		return ax.Len() - 1
	}
	return i
}

// extendZonal rebuilds the data block for a lon axis grown by halosize
// cells on each side, copying values from the opposite boundary.
func (f *Field) extendZonal(g *grid.Grid, halosize int) {
	nt, nz, ny := f.grid.Time.Len(), f.grid.Depth.Len(), f.grid.Lat.Len()
	nx := f.grid.Lon.Len()
	nxNew := nx + 2*halosize
	out := make([]float64, nt*nz*ny*nxNew)
	for ti := 0; ti < nt; ti++ {
		for zi := 0; zi < nz; zi++ {
			for yi := 0; yi < ny; yi++ {
				row := out[((ti*nz+zi)*ny+yi)*nxNew:]
				for xi := 0; xi < nxNew; xi++ {
					src := ((xi - halosize) + nx) % nx
					row[xi] = f.at(ti, zi, yi, src)
				}
			}
		}
	}
	f.data = out
	f.grid = g
}

// extendMeridional is the lat-axis counterpart of extendZonal.
func (f *Field) extendMeridional(g *grid.Grid, halosize int) {
	nt, nz, nx := f.grid.Time.Len(), f.grid.Depth.Len(), f.grid.Lon.Len()
	ny := f.grid.Lat.Len()
	nyNew := ny + 2*halosize
	out := make([]float64, nt*nz*nyNew*nx)
	for ti := 0; ti < nt; ti++ {
		for zi := 0; zi < nz; zi++ {
			for yi := 0; yi < nyNew; yi++ {
				src := ((yi - halosize) + ny) % ny
				for xi := 0; xi < nx; xi++ {
					out[((ti*nz+zi)*nyNew+yi)*nx+xi] = f.at(ti, zi, src, xi)
				}
			}
		}
	}
	f.data = out
	f.grid = g
}
