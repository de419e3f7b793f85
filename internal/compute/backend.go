// Package compute provides interchangeable execution backends for the
// per-particle sweep of an outer step. Backends only change how work is
// scheduled, never what is computed: an equivalence test holds them to
// numerically identical trajectories.
package compute

// Backend runs an indexed loop body over [0, n). Bodies are independent
// per-particle evaluations; they share no mutable state besides the slots
// they own by index.
type Backend interface {
	Name() string
	Available() bool
	Map(n int, fn func(i int))
}

var activeBackend Backend

func init() {
	activeBackend = AutoSelect()
}

func SetBackend(b Backend) {
	activeBackend = b
}

func GetBackend() Backend {
	return activeBackend
}

// AutoSelect picks the parallel backend when it can help, else serial.
func AutoSelect() Backend {
	p := NewParallel(0)
	if p.Available() {
		return p
	}
	return NewSerial()
}
