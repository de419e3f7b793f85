package grid

// Mesh selects how coordinate differences convert to physical distances.
type Mesh string

const (
	// MeshFlat treats coordinates as native distance units.
	MeshFlat Mesh = "flat"
	// MeshSpherical treats lat/lon as geographic degrees; velocities in
	// distance units per second need conversion, including the cosine
	// pole correction on the zonal component.
	MeshSpherical Mesh = "spherical"
)

// Grid holds the four coordinate axes shared by the fields sampled on it.
// Depth increases downward.
type Grid struct {
	Time  *Axis
	Depth *Axis
	Lat   *Axis
	Lon   *Axis
	Mesh  Mesh
}

func New(time, depth, lat, lon []float64, mesh Mesh) (*Grid, error) {
	g := &Grid{Mesh: mesh}
	var err error
	if g.Time, err = NewAxis(orDefault(time)); err != nil {
		return nil, err
	}
	if g.Depth, err = NewAxis(orDefault(depth)); err != nil {
		return nil, err
	}
	if g.Lat, err = NewAxis(orDefault(lat)); err != nil {
		return nil, err
	}
	if g.Lon, err = NewAxis(orDefault(lon)); err != nil {
		return nil, err
	}
	return g, nil
}

func orDefault(vals []float64) []float64 {
	if len(vals) == 0 {
		return []float64{0}
	}
	return vals
}

// Hint caches the bracketing indices of the previous sample so successive
// queries from the same moving particle skip the axis search.
type Hint struct {
	Ti, Zi, Yi, Xi int
}

func NewHint() *Hint {
	h := &Hint{}
	h.Invalidate()
	return h
}

// Invalidate forces a full search on the next lookup, e.g. after a recovery
// kernel teleports the particle.
func (h *Hint) Invalidate() {
	h.Ti, h.Zi, h.Yi, h.Xi = -1, -1, -1, -1
}
