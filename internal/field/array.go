package field

import "fmt"

// Array is a dense row-major sample block handed to FromData. Shape lists
// the axis lengths slowest-first; axes of length one may be omitted
// entirely, and a scalar is an array with an empty shape.
type Array struct {
	Shape []int
	Data  []float64
}

func NewArray(shape []int, data []float64) (*Array, error) {
	size := 1
	for _, s := range shape {
		if s <= 0 {
			return nil, fmt.Errorf("field: non-positive axis length %d", s)
		}
		size *= s
	}
	if len(data) != size {
		return nil, fmt.Errorf("field: array data length %d does not match shape %v", len(data), shape)
	}
	return &Array{Shape: shape, Data: data}, nil
}

// Scalar wraps a single value as a fully degenerate array.
func Scalar(v float64) *Array {
	return &Array{Data: []float64{v}}
}

// Fill builds an array whose value at each canonical (time, depth, lat, lon)
// index is produced by f.
func Fill(nt, nz, ny, nx int, f func(ti, zi, yi, xi int) float64) *Array {
	data := make([]float64, nt*nz*ny*nx)
	i := 0
	for ti := 0; ti < nt; ti++ {
		for zi := 0; zi < nz; zi++ {
			for yi := 0; yi < ny; yi++ {
				for xi := 0; xi < nx; xi++ {
					data[i] = f(ti, zi, yi, xi)
					i++
				}
			}
		}
	}
	return &Array{Shape: []int{nt, nz, ny, nx}, Data: data}
}

// Uniform builds a constant array of the canonical shape.
func Uniform(v float64, nt, nz, ny, nx int) *Array {
	return Fill(nt, nz, ny, nx, func(_, _, _, _ int) float64 { return v })
}

// reversed returns the array with its axis order flipped, used to accept
// space-major (lon, lat, depth, time) input via the transpose flag.
func (a *Array) reversed() *Array {
	nd := len(a.Shape)
	if nd < 2 {
		return a
	}
	shape := make([]int, nd)
	for i, s := range a.Shape {
		shape[nd-1-i] = s
	}
	// Strides of the source array in its own (unreversed) layout.
	strides := make([]int, nd)
	stride := 1
	for i := nd - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= a.Shape[i]
	}
	data := make([]float64, len(a.Data))
	idx := make([]int, nd) // index in the reversed layout
	for out := range data {
		src := 0
		for i := 0; i < nd; i++ {
			src += idx[i] * strides[nd-1-i]
		}
		data[out] = a.Data[src]
		for i := nd - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < shape[i] {
				break
			}
			idx[i] = 0
		}
	}
	return &Array{Shape: shape, Data: data}
}

// conform maps the array onto the canonical (time, depth, lat, lon) lengths.
// Only length-one axes may be omitted, so row-major data is reusable as-is
// once the shape is validated.
func (a *Array) conform(nt, nz, ny, nx int) ([]float64, error) {
	want := []int{nt, nz, ny, nx}
	shape := a.Shape
	if len(shape) > 4 {
		return nil, fmt.Errorf("field: array has %d axes, at most 4 supported", len(shape))
	}
	if !matchAxes(shape, want) {
		return nil, fmt.Errorf("field: array shape %v does not conform to dimensions (%d,%d,%d,%d)", shape, nt, nz, ny, nx)
	}
	if len(a.Data) != nt*nz*ny*nx {
		return nil, fmt.Errorf("field: array size %d does not match dimensions (%d,%d,%d,%d)", len(a.Data), nt, nz, ny, nx)
	}
	return a.Data, nil
}

// matchAxes reports whether shape can be aligned to want by inserting
// length-one axes only.
func matchAxes(shape, want []int) bool {
	if len(shape) == 0 {
		return product(want) == 1
	}
	if len(want) == 0 {
		return false
	}
	if shape[0] == want[0] && matchAxes(shape[1:], want[1:]) {
		return true
	}
	if want[0] == 1 {
		return matchAxes(shape, want[1:])
	}
	return false
}

func product(s []int) int {
	p := 1
	for _, v := range s {
		p *= v
	}
	return p
}
