package azarr

import (
	"fmt"
	"slices"

	"github.com/discochess/azarr/internal/dtype"
	"github.com/discochess/azarr/internal/ndarray"
)

// assembly is the output of one read.
type assembly struct {
	buf *Buffer
	// setter is the caller's output when it is not a Buffer.
	setter ElementSetter
}

// assemble allocates the output for a selection of the given shape and
// element type, or validates the one supplied by the caller.
func assemble(shape []int, t dtype.Type, out ElementSetter) (*assembly, error) {
	switch o := out.(type) {
	case nil:
		return &assembly{buf: newBuffer(t, shape)}, nil
	case *Buffer:
		if !slices.Equal(o.Shape(), shape) {
			return nil, fmt.Errorf("%w: output has shape %v, selection has shape %v", ErrShapeMismatch, o.Shape(), shape)
		}
		if !o.dtype.Equal(t) {
			return nil, fmt.Errorf("%w: output elements are %s, selection elements are %s", ErrShapeMismatch, o.dtype, t)
		}
		return &assembly{buf: o}, nil
	default:
		if !slices.Equal(o.Shape(), shape) {
			return nil, fmt.Errorf("%w: output has shape %v, selection has shape %v", ErrShapeMismatch, o.Shape(), shape)
		}
		return &assembly{buf: newBuffer(t, shape), setter: o}, nil
	}
}

// finish copies the written regions of the assembled buffer into a foreign
// output and returns the read's result: the single element for an empty
// shape, otherwise the output.
func (a *assembly) finish(written [][]ndarray.Range) (any, error) {
	if a.setter != nil {
		if err := a.flush(written); err != nil {
			return nil, err
		}
	}
	if a.buf.arr.NDim() == 0 {
		return a.buf.At()
	}
	if a.setter != nil {
		return a.setter, nil
	}
	return a.buf, nil
}

// flush pushes the elements of each region into the foreign output. Elements
// outside the regions were never written and keep the caller's values.
func (a *assembly) flush(regions [][]ndarray.Range) error {
	var err error
	for _, sel := range regions {
		walkErr := a.buf.arr.Walk(sel, func(off int) {
			if err != nil {
				return
			}
			idx := a.buf.arr.Index(off)
			v, atErr := a.buf.At(idx...)
			if atErr != nil {
				err = atErr
				return
			}
			if setErr := a.setter.SetElement(idx, v); setErr != nil {
				err = fmt.Errorf("setting output element %v: %w", idx, setErr)
			}
		})
		if walkErr != nil {
			return walkErr
		}
		if err != nil {
			return err
		}
	}
	return nil
}
