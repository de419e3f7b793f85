package field

import (
	"fmt"
	"math"
	"sort"

	"github.com/Eisbrenner/parcels/internal/grid"
)

// DefaultHalosize is the number of duplicated cells appended per side by
// AddPeriodicHalo when the caller does not choose one.
const DefaultHalosize = 5

// Dimensions maps named coordinate sequences onto the grid axes. Omitted
// axes are degenerate.
type Dimensions struct {
	Lon   []float64
	Lat   []float64
	Depth []float64
	Time  []float64
}

type options struct {
	mesh        grid.Mesh
	transpose   bool
	allowExtrap bool
}

type Option func(*options)

// WithMesh selects flat or spherical distance semantics (default flat).
func WithMesh(m grid.Mesh) Option { return func(o *options) { o.mesh = m } }

// WithTranspose declares the input arrays space-major (lon slowest), the
// reverse of the canonical (time, depth, lat, lon) order.
func WithTranspose() Option { return func(o *options) { o.transpose = true } }

// WithTimeExtrapolation lets samples outside the time domain hold the end
// snapshots instead of failing.
func WithTimeExtrapolation() Option { return func(o *options) { o.allowExtrap = true } }

// FieldSet is a named collection of fields on a shared grid that together
// define the flow. It is built once, optionally reconfigured through the
// administrative operations below, and read-only during a run.
type FieldSet struct {
	U, V, W *Field

	grid   *grid.Grid
	fields map[string]*Field
	frozen bool
}

// FromData builds a FieldSet from raw named arrays and a dimension mapping.
// U and V are required; W and any auxiliary scalar fields are carried along
// with linear interpolation.
func FromData(data map[string]*Array, dims Dimensions, opts ...Option) (*FieldSet, error) {
	o := options{mesh: grid.MeshFlat}
	for _, opt := range opts {
		opt(&o)
	}
	g, err := grid.New(dims.Time, dims.Depth, dims.Lat, dims.Lon, o.mesh)
	if err != nil {
		return nil, err
	}
	fs := &FieldSet{grid: g, fields: make(map[string]*Field)}
	for name, arr := range data {
		if arr == nil {
			return nil, fmt.Errorf("field: nil array for %q", name)
		}
		if o.transpose {
			arr = arr.reversed()
		}
		vals, err := arr.conform(g.Time.Len(), g.Depth.Len(), g.Lat.Len(), g.Lon.Len())
		if err != nil {
			return nil, fmt.Errorf("%w (field %q)", err, name)
		}
		f := &Field{
			Name:        name,
			Interp:      InterpLinear,
			grid:        g,
			data:        vals,
			units:       identityConverter{},
			allowExtrap: o.allowExtrap,
		}
		switch name {
		case "U":
			f.component = ComponentU
			if o.mesh == grid.MeshSpherical {
				f.units = geographicPolar{}
			}
			fs.U = f
		case "V":
			f.component = ComponentV
			if o.mesh == grid.MeshSpherical {
				f.units = geographic{}
			}
			fs.V = f
		case "W":
			f.component = ComponentW
			fs.W = f
		}
		fs.fields[name] = f
	}
	if fs.U == nil || fs.V == nil {
		return nil, fmt.Errorf("field: a fieldset needs at least U and V")
	}
	return fs, nil
}

func (fs *FieldSet) Grid() *grid.Grid { return fs.grid }

// Field looks up a field by name.
func (fs *FieldSet) Field(name string) (*Field, bool) {
	f, ok := fs.fields[name]
	return f, ok
}

// Names lists the field names in deterministic order.
func (fs *FieldSet) Names() []string {
	names := make([]string, 0, len(fs.fields))
	for n := range fs.fields {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Freeze marks the set read-only; administrative operations fail afterwards.
// Called by the execution loop when a run starts.
func (fs *FieldSet) Freeze() { fs.frozen = true }

// SetInterpMethod reconfigures one field's interpolation scheme. Admin
// operation, only valid before a run starts.
func (fs *FieldSet) SetInterpMethod(name string, m InterpMethod) error {
	if fs.frozen {
		return fmt.Errorf("field: fieldset is frozen, cannot change interpolation of %q", name)
	}
	f, ok := fs.fields[name]
	if !ok {
		return fmt.Errorf("field: unknown field %q", name)
	}
	switch m {
	case InterpLinear, InterpNearest, InterpCGridVelocity:
	default:
		return fmt.Errorf("field: unknown interpolation method %q", m)
	}
	f.Interp = m
	return nil
}

// AddPeriodicHalo appends halosize duplicate cells at both ends of the
// chosen axes, offsetting the appended coordinates by one period and copying
// values from the opposite boundary. Sampling afterwards needs no wraparound
// special case. Admin operation, only valid before a run starts.
func (fs *FieldSet) AddPeriodicHalo(zonal, meridional bool, halosize int) error {
	if fs.frozen {
		return fmt.Errorf("field: fieldset is frozen, cannot add halo")
	}
	if halosize <= 0 {
		halosize = DefaultHalosize
	}
	if zonal {
		lon, err := fs.grid.Lon.ExtendPeriodic(halosize)
		if err != nil {
			return err
		}
		g := &grid.Grid{Time: fs.grid.Time, Depth: fs.grid.Depth, Lat: fs.grid.Lat, Lon: lon, Mesh: fs.grid.Mesh}
		for _, f := range fs.fields {
			f.extendZonal(g, halosize)
		}
		fs.grid = g
	}
	if meridional {
		lat, err := fs.grid.Lat.ExtendPeriodic(halosize)
		if err != nil {
			return err
		}
		g := &grid.Grid{Time: fs.grid.Time, Depth: fs.grid.Depth, Lat: lat, Lon: fs.grid.Lon, Mesh: fs.grid.Mesh}
		for _, f := range fs.fields {
			f.extendMeridional(g, halosize)
		}
		fs.grid = g
	}
	return nil
}

// SampleUV samples both horizontal velocity components at one space-time
// point, in coordinate units per second (deg/s on spherical meshes, with the
// pole correction applied to U).
func (fs *FieldSet) SampleUV(t, z, y, x float64, h *grid.Hint) (u, v float64, err error) {
	if u, err = fs.U.Sample(t, z, y, x, h); err != nil {
		return 0, 0, err
	}
	if v, err = fs.V.Sample(t, z, y, x, h); err != nil {
		return 0, 0, err
	}
	return u, v, nil
}

// SampleW samples the vertical velocity (positive downward, matching the
// depth axis); a set without W reports zero.
func (fs *FieldSet) SampleW(t, z, y, x float64, h *grid.Hint) (float64, error) {
	if fs.W == nil {
		return 0, nil
	}
	return fs.W.Sample(t, z, y, x, h)
}

// Cell describes the grid cell containing a query point for closed-form
// advection: edge coordinates plus the velocity at each bounding face,
// already unit-converted. Degenerate axes yield unbounded edges and equal
// face velocities, so motion along them is uniform.
type Cell struct {
	Xi, Yi, Zi             int
	XLo, XHi, YLo, YHi     float64
	ZLo, ZHi               float64
	UW, UE, VS, VN, WT, WB float64
}

// LocateCell finds the enclosing cell and its face velocities at time t.
// The hint steers boundary queries into the intended neighbour cell, which
// is how a cell-crossing integrator walks the grid.
func (fs *FieldSet) LocateCell(t, z, y, x float64, h *grid.Hint) (Cell, error) {
	var c Cell
	g := fs.grid
	ti, tau, err := fs.U.locateTime(t, h)
	if err != nil {
		return c, err
	}
	h.Ti = ti
	var ok bool
	if c.Xi, _, ok = g.Lon.Locate(x, h.Xi); !ok {
		return c, ErrOutOfBounds
	}
	if c.Yi, _, ok = g.Lat.Locate(y, h.Yi); !ok {
		return c, ErrOutOfBounds
	}
	if c.Zi, _, ok = g.Depth.Locate(z, h.Zi); !ok {
		if g.Depth.Classify(z) == grid.BelowMin {
			return c, ErrThroughSurface
		}
		return c, ErrOutOfBounds
	}
	h.Xi, h.Yi, h.Zi = c.Xi, c.Yi, c.Zi

	c.XLo, c.XHi = axisEdges(g.Lon, c.Xi)
	c.YLo, c.YHi = axisEdges(g.Lat, c.Yi)
	c.ZLo, c.ZHi = axisEdges(g.Depth, c.Zi)

	face := func(f *Field, ti, zi, yi, xi int) float64 {
		v := f.at(ti, zi, yi, xi)
		if tau > 0 && ti+1 < g.Time.Len() {
			v = (1-tau)*v + tau*f.at(ti+1, zi, yi, xi)
		}
		return v
	}
	xi1 := clampIdx(c.Xi+1, g.Lon)
	yi1 := clampIdx(c.Yi+1, g.Lat)
	zi1 := clampIdx(c.Zi+1, g.Depth)
	c.UW = fs.U.units.ToTarget(face(fs.U, ti, c.Zi, c.Yi, c.Xi), z, y, x)
	c.UE = fs.U.units.ToTarget(face(fs.U, ti, c.Zi, c.Yi, xi1), z, y, x)
	c.VS = fs.V.units.ToTarget(face(fs.V, ti, c.Zi, c.Yi, c.Xi), z, y, x)
	c.VN = fs.V.units.ToTarget(face(fs.V, ti, c.Zi, yi1, c.Xi), z, y, x)
	if fs.W != nil {
		c.WT = face(fs.W, ti, c.Zi, c.Yi, c.Xi)
		c.WB = face(fs.W, ti, zi1, c.Yi, c.Xi)
	}
	return c, nil
}

func axisEdges(ax *grid.Axis, i int) (lo, hi float64) {
	if ax.Degenerate() {
		return math.Inf(-1), math.Inf(1)
	}
	return ax.At(i), ax.At(i + 1)
}
