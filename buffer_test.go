package azarr

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestNewBuffer(t *testing.T) {
	tests := []struct {
		typ     string
		shape   []int
		wantLen int
		wantErr bool
	}{
		{"<f8", []int{2, 3}, 6, false},
		{"|b1", nil, 1, false},
		{`[["a", "<i2"], ["b", "|u1"]]`, []int{4}, 4, false},
		{"<q8", []int{1}, 0, true},
		{"<f8", []int{-1}, 0, true},
	}
	for _, tt := range tests {
		b, err := NewBuffer(tt.typ, tt.shape...)
		if (err != nil) != tt.wantErr {
			t.Errorf("NewBuffer(%q, %v) error = %v, wantErr %v", tt.typ, tt.shape, err, tt.wantErr)
			continue
		}
		if err == nil && b.Len() != tt.wantLen {
			t.Errorf("NewBuffer(%q, %v).Len() = %d, want %d", tt.typ, tt.shape, b.Len(), tt.wantLen)
		}
	}
}

func TestBuffer_SetElement(t *testing.T) {
	b, _ := NewBuffer(">i2", 2, 2)
	for i, v := range []any{int(1), float32(-2), uint8(3), true} {
		if err := b.SetElement([]int{i / 2, i % 2}, v); err != nil {
			t.Fatalf("SetElement(%v) error = %v", v, err)
		}
	}
	got, err := b.Values()
	if err != nil {
		t.Fatalf("Values() error = %v", err)
	}
	want := []any{int16(1), int16(-2), int16(3), int16(1)}
	if !slices.Equal(got, want) {
		t.Errorf("Values() = %v, want %v", got, want)
	}

	if err := b.SetElement([]int{2, 0}, 1); err == nil {
		t.Error("SetElement() expected out of range error")
	}
	if err := b.SetElement([]int{0, 0}, struct{}{}); err == nil {
		t.Error("SetElement() expected error for unsupported value")
	}
	if err := b.SetElement([]int{0, 0}, []byte{1}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("SetElement() with short bytes error = %v, want ErrShapeMismatch", err)
	}
}

func TestBuffer_SetElement_Exact(t *testing.T) {
	tests := []struct {
		typ  string
		v    any
		want any
	}{
		{"<i8", int64(9007199254740993), int64(9007199254740993)},
		{"<u8", uint64(math.MaxUint64), uint64(math.MaxUint64)},
		{">i8", int64(math.MinInt64), int64(math.MinInt64)},
		{"<c16", complex(1, -1), complex(1, -1)},
		{"<c8", complex64(complex(2, 3)), complex64(complex(2, 3))},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			b, _ := NewBuffer(tt.typ)
			if err := b.SetElement(nil, tt.v); err != nil {
				t.Fatalf("SetElement() error = %v", err)
			}
			if got, _ := b.At(); got != tt.want {
				t.Errorf("At() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBuffer_Strings(t *testing.T) {
	s, _ := NewBuffer("|S3", 1)
	if err := s.SetElement([]int{0}, "ab"); err != nil {
		t.Fatalf("SetElement() error = %v", err)
	}
	if v, _ := s.At(0); v != "ab" {
		t.Errorf("At(0) = %q, want ab", v)
	}
	if err := s.SetElement([]int{0}, "abcd"); err == nil {
		t.Error("SetElement() expected error for long string")
	}

	u, _ := NewBuffer(">U2", 1)
	if err := u.SetElement([]int{0}, "hé"); err != nil {
		t.Fatalf("SetElement() error = %v", err)
	}
	if v, _ := u.At(0); v != "hé" {
		t.Errorf("At(0) = %q, want hé", v)
	}
}

func TestBuffer_Structured(t *testing.T) {
	b, _ := NewBuffer(`[["a", "<i2"], ["b", "<f4"]]`, 1)
	if err := b.SetElement([]int{0}, map[string]any{"a": 4, "b": 0.5}); err != nil {
		t.Fatalf("SetElement() error = %v", err)
	}
	v, err := b.At(0)
	if err != nil {
		t.Fatalf("At() error = %v", err)
	}
	rec := v.(map[string]any)
	if rec["a"] != int16(4) || rec["b"] != float32(0.5) {
		t.Errorf("At(0) = %v", rec)
	}
	if _, err := b.Float64s(); err == nil {
		t.Error("Float64s() expected error for structured type")
	}
}
