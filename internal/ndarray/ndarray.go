// Package ndarray implements a dense N-dimensional array of fixed-size
// elements stored as raw bytes in row-major (C) order.
//
// The array does not interpret element bytes; typed access is layered on top
// by callers that know the element type.
package ndarray

import (
	"errors"
	"fmt"
)

// ErrShape is returned when shapes or selections do not line up.
var ErrShape = errors.New("ndarray: shape mismatch")

// Range selects the indices Start, Start+Step, ... below Stop along one axis.
type Range struct {
	Start int
	Stop  int
	Step  int
}

// Len returns the number of indices selected by r.
func (r Range) Len() int {
	step := r.Step
	if step <= 0 {
		step = 1
	}
	if r.Stop <= r.Start {
		return 0
	}
	return (r.Stop - r.Start + step - 1) / step
}

func (r Range) step() int {
	if r.Step <= 0 {
		return 1
	}
	return r.Step
}

// Span maps a byte range of a source element onto a destination element.
// Spans are used to project structured elements onto a subset of fields.
type Span struct {
	SrcOffset int
	DstOffset int
	Len       int
}

// Array is a dense N-dimensional array. The zero-dimensional array holds a
// single element.
type Array struct {
	shape    []int
	strides  []int
	itemSize int
	data     []byte
}

// New allocates a zeroed array.
func New(shape []int, itemSize int) *Array {
	a := &Array{
		shape:    append([]int(nil), shape...),
		itemSize: itemSize,
	}
	a.strides = stridesFor(a.shape)
	a.data = make([]byte, Size(shape)*itemSize)
	return a
}

// FromBytes wraps data, which must hold exactly product(shape) elements.
// The slice is used directly, not copied.
func FromBytes(shape []int, itemSize int, data []byte) (*Array, error) {
	want := Size(shape) * itemSize
	if len(data) != want {
		return nil, fmt.Errorf("%w: %d bytes for shape %v of %d-byte items, want %d",
			ErrShape, len(data), shape, itemSize, want)
	}
	a := &Array{
		shape:    append([]int(nil), shape...),
		itemSize: itemSize,
		data:     data,
	}
	a.strides = stridesFor(a.shape)
	return a, nil
}

// Size returns the number of elements in an array of the given shape.
func Size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// stridesFor returns element strides for a C-ordered shape.
func stridesFor(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

// Shape returns a copy of the array's shape.
func (a *Array) Shape() []int { return append([]int(nil), a.shape...) }

// NDim returns the number of dimensions.
func (a *Array) NDim() int { return len(a.shape) }

// Len returns the number of elements.
func (a *Array) Len() int { return Size(a.shape) }

// ItemSize returns the number of bytes per element.
func (a *Array) ItemSize() int { return a.itemSize }

// Bytes returns the backing bytes.
func (a *Array) Bytes() []byte { return a.data }

// Offset returns the element index of idx in C order.
func (a *Array) Offset(idx []int) (int, error) {
	if len(idx) != len(a.shape) {
		return 0, fmt.Errorf("%w: %d indices for %d dimensions", ErrShape, len(idx), len(a.shape))
	}
	off := 0
	for i, v := range idx {
		if v < 0 || v >= a.shape[i] {
			return 0, fmt.Errorf("ndarray: index %d out of range [0, %d) on axis %d", v, a.shape[i], i)
		}
		off += v * a.strides[i]
	}
	return off, nil
}

// Item returns the bytes of the element at idx. The slice aliases the array.
func (a *Array) Item(idx ...int) ([]byte, error) {
	off, err := a.Offset(idx)
	if err != nil {
		return nil, err
	}
	return a.item(off), nil
}

func (a *Array) item(off int) []byte {
	return a.data[off*a.itemSize : (off+1)*a.itemSize]
}

// Index converts a flat element index back into coordinates.
func (a *Array) Index(off int) []int {
	idx := make([]int, len(a.shape))
	for i := range a.shape {
		idx[i] = off / a.strides[i]
		off %= a.strides[i]
	}
	return idx
}

// Full returns a selection covering the whole array.
func (a *Array) Full() []Range {
	sel := make([]Range, len(a.shape))
	for i, d := range a.shape {
		sel[i] = Range{Start: 0, Stop: d, Step: 1}
	}
	return sel
}

// checkSelection validates sel against the array bounds.
func (a *Array) checkSelection(sel []Range) error {
	if len(sel) != len(a.shape) {
		return fmt.Errorf("%w: selection has %d axes, array has %d", ErrShape, len(sel), len(a.shape))
	}
	for i, r := range sel {
		if r.Len() == 0 {
			continue
		}
		last := r.Start + (r.Len()-1)*r.step()
		if r.Start < 0 || last >= a.shape[i] {
			return fmt.Errorf("%w: selection [%d:%d:%d] out of bounds for axis %d of length %d",
				ErrShape, r.Start, r.Stop, r.Step, i, a.shape[i])
		}
	}
	return nil
}

// Walk calls fn with the flat element index of every selected element, in
// C order of the selection.
func (a *Array) Walk(sel []Range, fn func(off int)) error {
	if err := a.checkSelection(sel); err != nil {
		return err
	}
	walk(a.strides, sel, fn)
	return nil
}

func walk(strides []int, sel []Range, fn func(off int)) {
	if len(sel) == 0 {
		fn(0)
		return
	}
	for _, r := range sel {
		if r.Len() == 0 {
			return
		}
	}

	counters := make([]int, len(sel))
	last := len(sel) - 1
	for {
		off := 0
		for i, r := range sel {
			off += (r.Start + counters[i]*r.step()) * strides[i]
		}
		fn(off)

		// odometer increment, innermost axis fastest
		axis := last
		for axis >= 0 {
			counters[axis]++
			if counters[axis] < sel[axis].Len() {
				break
			}
			counters[axis] = 0
			axis--
		}
		if axis < 0 {
			return
		}
	}
}

// SelectionShape returns the shape selected by sel.
func SelectionShape(sel []Range) []int {
	shape := make([]int, len(sel))
	for i, r := range sel {
		shape[i] = r.Len()
	}
	return shape
}

// Squeeze removes the given axes, which must have length 1, from shape.
func Squeeze(shape []int, axes []int) ([]int, error) {
	if len(axes) == 0 {
		return shape, nil
	}
	drop := make(map[int]bool, len(axes))
	for _, ax := range axes {
		if ax < 0 || ax >= len(shape) {
			return nil, fmt.Errorf("%w: axis %d out of range for %d dimensions", ErrShape, ax, len(shape))
		}
		if shape[ax] != 1 {
			return nil, fmt.Errorf("%w: cannot drop axis %d of length %d", ErrShape, ax, shape[ax])
		}
		drop[ax] = true
	}
	out := make([]int, 0, len(shape)-len(drop))
	for i, d := range shape {
		if !drop[i] {
			out = append(out, d)
		}
	}
	return out, nil
}

func equalShape(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
