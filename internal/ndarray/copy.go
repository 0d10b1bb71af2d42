package ndarray

import "fmt"

// Copy copies the elements selected by srcSel in src into the elements
// selected by dstSel in dst, pairing them in C order.
//
// dropAxes names axes of srcSel (each selecting exactly one index) that do
// not appear in dstSel. After dropping them the two selection shapes must be
// equal. If spans is empty whole elements are copied and the item sizes must
// match; otherwise only the listed byte ranges are copied.
func Copy(dst *Array, dstSel []Range, src *Array, srcSel []Range, dropAxes []int, spans []Span) error {
	if err := dst.checkSelection(dstSel); err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if err := src.checkSelection(srcSel); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	srcShape, err := Squeeze(SelectionShape(srcSel), dropAxes)
	if err != nil {
		return err
	}
	if dstShape := SelectionShape(dstSel); !equalShape(srcShape, dstShape) {
		return fmt.Errorf("%w: source selection %v does not fit destination selection %v",
			ErrShape, srcShape, dstShape)
	}

	if len(spans) == 0 {
		if src.itemSize != dst.itemSize {
			return fmt.Errorf("%w: item size %d into %d", ErrShape, src.itemSize, dst.itemSize)
		}
		spans = []Span{{Len: src.itemSize}}
	}
	for _, sp := range spans {
		if sp.SrcOffset+sp.Len > src.itemSize || sp.DstOffset+sp.Len > dst.itemSize {
			return fmt.Errorf("%w: span %+v exceeds item sizes %d/%d", ErrShape, sp, src.itemSize, dst.itemSize)
		}
	}

	dstOffs := make([]int, 0, Size(SelectionShape(dstSel)))
	walk(dst.strides, dstSel, func(off int) { dstOffs = append(dstOffs, off) })

	i := 0
	walk(src.strides, srcSel, func(off int) {
		s := src.item(off)
		d := dst.item(dstOffs[i])
		for _, sp := range spans {
			copy(d[sp.DstOffset:sp.DstOffset+sp.Len], s[sp.SrcOffset:sp.SrcOffset+sp.Len])
		}
		i++
	})
	return nil
}

// Fill writes value into every element selected by sel.
func Fill(dst *Array, sel []Range, value []byte) error {
	if len(value) != dst.itemSize {
		return fmt.Errorf("%w: fill value has %d bytes, item size is %d", ErrShape, len(value), dst.itemSize)
	}
	return dst.Walk(sel, func(off int) {
		copy(dst.item(off), value)
	})
}

// FromFortran reorders data laid out in column-major (F) order into a new
// C-ordered array of the given shape.
func FromFortran(shape []int, itemSize int, data []byte) (*Array, error) {
	if len(data) != Size(shape)*itemSize {
		return nil, fmt.Errorf("%w: %d bytes for shape %v of %d-byte items", ErrShape, len(data), shape, itemSize)
	}
	out := New(shape, itemSize)

	// F-order strides: first axis fastest.
	fstrides := make([]int, len(shape))
	acc := 1
	for i := range shape {
		fstrides[i] = acc
		acc *= shape[i]
	}

	n := 0
	walk(fstrides, out.Full(), func(off int) {
		copy(out.item(n), data[off*itemSize:(off+1)*itemSize])
		n++
	})
	return out, nil
}
