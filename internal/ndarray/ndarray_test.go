package ndarray

import (
	"bytes"
	"errors"
	"testing"
)

// seq returns an array of 1-byte items holding 0, 1, 2, ...
func seq(shape ...int) *Array {
	a := New(shape, 1)
	for i := range a.data {
		a.data[i] = byte(i)
	}
	return a
}

func TestRange_Len(t *testing.T) {
	tests := []struct {
		r    Range
		want int
	}{
		{Range{0, 5, 1}, 5},
		{Range{3, 7, 1}, 4},
		{Range{0, 10, 3}, 4},
		{Range{5, 5, 1}, 0},
		{Range{6, 5, 1}, 0},
		{Range{0, 4, 0}, 4},
	}
	for _, tt := range tests {
		if got := tt.r.Len(); got != tt.want {
			t.Errorf("%+v.Len() = %d, want %d", tt.r, got, tt.want)
		}
	}
}

func TestArray_OffsetAndIndex(t *testing.T) {
	a := seq(2, 3, 4)
	off, err := a.Offset([]int{1, 2, 3})
	if err != nil {
		t.Fatalf("Offset() error = %v", err)
	}
	if off != 23 {
		t.Errorf("Offset() = %d, want 23", off)
	}
	idx := a.Index(off)
	if idx[0] != 1 || idx[1] != 2 || idx[2] != 3 {
		t.Errorf("Index(23) = %v", idx)
	}
	if _, err := a.Offset([]int{2, 0, 0}); err == nil {
		t.Error("Offset() expected out of range error")
	}
}

func TestArray_ZeroDim(t *testing.T) {
	a := New(nil, 8)
	if a.Len() != 1 || len(a.Bytes()) != 8 {
		t.Errorf("zero-dim array Len() = %d, bytes = %d", a.Len(), len(a.Bytes()))
	}
	var offs []int
	if err := a.Walk(nil, func(off int) { offs = append(offs, off) }); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	if len(offs) != 1 || offs[0] != 0 {
		t.Errorf("Walk() visited %v, want [0]", offs)
	}
}

func TestFromBytes_SizeMismatch(t *testing.T) {
	_, err := FromBytes([]int{2, 2}, 4, make([]byte, 15))
	if !errors.Is(err, ErrShape) {
		t.Errorf("FromBytes() error = %v, want ErrShape", err)
	}
}

func TestCopy_SubRegion(t *testing.T) {
	src := seq(4, 4)
	dst := New([]int{2, 2}, 1)

	err := Copy(dst, dst.Full(), src, []Range{{1, 3, 1}, {2, 4, 1}}, nil, nil)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	want := []byte{6, 7, 10, 11}
	if !bytes.Equal(dst.Bytes(), want) {
		t.Errorf("Copy() = %v, want %v", dst.Bytes(), want)
	}
}

func TestCopy_Strided(t *testing.T) {
	src := seq(10)
	dst := New([]int{3}, 1)
	if err := Copy(dst, dst.Full(), src, []Range{{1, 10, 3}}, nil, nil); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	want := []byte{1, 4, 7}
	if !bytes.Equal(dst.Bytes(), want) {
		t.Errorf("Copy() = %v, want %v", dst.Bytes(), want)
	}
}

func TestCopy_DropAxes(t *testing.T) {
	src := seq(3, 4)
	dst := New([]int{4}, 1)

	// row 2 of the source, with its length-1 first axis dropped
	err := Copy(dst, dst.Full(), src, []Range{{2, 3, 1}, {0, 4, 1}}, []int{0}, nil)
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	want := []byte{8, 9, 10, 11}
	if !bytes.Equal(dst.Bytes(), want) {
		t.Errorf("Copy() = %v, want %v", dst.Bytes(), want)
	}
}

func TestCopy_ShapeMismatch(t *testing.T) {
	src := seq(4)
	dst := New([]int{3}, 1)
	err := Copy(dst, dst.Full(), src, src.Full(), nil, nil)
	if !errors.Is(err, ErrShape) {
		t.Errorf("Copy() error = %v, want ErrShape", err)
	}

	err = Copy(dst, dst.Full(), src, []Range{{0, 3, 1}}, []int{0}, nil)
	if !errors.Is(err, ErrShape) {
		t.Errorf("Copy() with bad drop axis error = %v, want ErrShape", err)
	}
}

func TestCopy_OutOfBounds(t *testing.T) {
	src := seq(4)
	dst := New([]int{2}, 1)
	err := Copy(dst, dst.Full(), src, []Range{{3, 5, 1}}, nil, nil)
	if !errors.Is(err, ErrShape) {
		t.Errorf("Copy() error = %v, want ErrShape", err)
	}
}

func TestCopy_Spans(t *testing.T) {
	// 3-byte source items, project bytes 2 and 0 into 2-byte items
	src, err := FromBytes([]int{2}, 3, []byte{1, 2, 3, 4, 5, 6})
	if err != nil {
		t.Fatal(err)
	}
	dst := New([]int{2}, 2)
	spans := []Span{{SrcOffset: 2, DstOffset: 0, Len: 1}, {SrcOffset: 0, DstOffset: 1, Len: 1}}
	if err := Copy(dst, dst.Full(), src, src.Full(), nil, spans); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	want := []byte{3, 1, 6, 4}
	if !bytes.Equal(dst.Bytes(), want) {
		t.Errorf("Copy() = %v, want %v", dst.Bytes(), want)
	}
}

func TestFill(t *testing.T) {
	dst := New([]int{2, 3}, 2)
	if err := Fill(dst, []Range{{0, 2, 1}, {1, 3, 1}}, []byte{9, 9}); err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	want := []byte{0, 0, 9, 9, 9, 9, 0, 0, 9, 9, 9, 9}
	if !bytes.Equal(dst.Bytes(), want) {
		t.Errorf("Fill() = %v, want %v", dst.Bytes(), want)
	}

	if err := Fill(dst, dst.Full(), []byte{1}); !errors.Is(err, ErrShape) {
		t.Errorf("Fill() with short value error = %v, want ErrShape", err)
	}
}

func TestFromFortran(t *testing.T) {
	// F-order bytes for [[0 1 2] [3 4 5]]
	data := []byte{0, 3, 1, 4, 2, 5}
	a, err := FromFortran([]int{2, 3}, 1, data)
	if err != nil {
		t.Fatalf("FromFortran() error = %v", err)
	}
	want := []byte{0, 1, 2, 3, 4, 5}
	if !bytes.Equal(a.Bytes(), want) {
		t.Errorf("FromFortran() = %v, want %v", a.Bytes(), want)
	}
}

func TestSqueeze(t *testing.T) {
	got, err := Squeeze([]int{1, 4, 1, 2}, []int{0, 2})
	if err != nil {
		t.Fatalf("Squeeze() error = %v", err)
	}
	if len(got) != 2 || got[0] != 4 || got[1] != 2 {
		t.Errorf("Squeeze() = %v, want [4 2]", got)
	}
	if _, err := Squeeze([]int{2}, []int{0}); err == nil {
		t.Error("Squeeze() expected error for axis of length 2")
	}
}
