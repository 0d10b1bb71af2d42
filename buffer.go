package azarr

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/discochess/azarr/internal/dtype"
	"github.com/discochess/azarr/internal/ndarray"
)

// ElementSetter is an output that is not a Buffer. Reads into an
// ElementSetter assemble a Buffer first and then set every element, in C
// order, with the value At would return.
type ElementSetter interface {
	Shape() []int
	SetElement(idx []int, v any) error
}

// Compile-time check that Buffer implements ElementSetter.
var _ ElementSetter = (*Buffer)(nil)

// Buffer is a dense C-ordered N-dimensional array of one element type.
type Buffer struct {
	dtype dtype.Type
	arr   *ndarray.Array
}

// NewBuffer allocates a zeroed buffer. typ is a NumPy type string such as
// "<f8", or a JSON list of [name, type] pairs for a structured type.
func NewBuffer(typ string, shape ...int) (*Buffer, error) {
	var (
		t   dtype.Type
		err error
	)
	if strings.HasPrefix(strings.TrimSpace(typ), "[") {
		err = json.Unmarshal([]byte(typ), &t)
	} else {
		t, err = dtype.Parse(typ)
	}
	if err != nil {
		return nil, err
	}
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("azarr: negative dimension in shape %v", shape)
		}
	}
	return newBuffer(t, shape), nil
}

func newBuffer(t dtype.Type, shape []int) *Buffer {
	return &Buffer{dtype: t, arr: ndarray.New(shape, t.ItemSize())}
}

// Shape returns a copy of the buffer's shape.
func (b *Buffer) Shape() []int { return b.arr.Shape() }

// Dtype returns the element type string.
func (b *Buffer) Dtype() string { return b.dtype.String() }

// Len returns the number of elements.
func (b *Buffer) Len() int { return b.arr.Len() }

// Bytes returns the raw element bytes in C order. The slice aliases the
// buffer.
func (b *Buffer) Bytes() []byte { return b.arr.Bytes() }

// At returns the element at idx. Numeric types decode to the Go type of the
// same size, structured types to map[string]any.
func (b *Buffer) At(idx ...int) (any, error) {
	item, err := b.arr.Item(idx...)
	if err != nil {
		return nil, err
	}
	return b.dtype.Decode(item)
}

// SetElement stores v at idx. v may be a Go number, a bool, a string for
// byte and unicode types, a map[string]any for structured types, or the
// raw element bytes.
func (b *Buffer) SetElement(idx []int, v any) error {
	item, err := b.arr.Item(idx...)
	if err != nil {
		return err
	}
	enc, err := encodeElement(b.dtype, v)
	if err != nil {
		return err
	}
	copy(item, enc)
	return nil
}

// Values returns every element in C order.
func (b *Buffer) Values() ([]any, error) {
	out := make([]any, 0, b.Len())
	data := b.arr.Bytes()
	size := b.dtype.ItemSize()
	for off := 0; off < len(data); off += size {
		v, err := b.dtype.Decode(data[off : off+size])
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// Float64s returns every element in C order converted to float64. It fails
// for non-numeric types.
func (b *Buffer) Float64s() ([]float64, error) {
	out := make([]float64, 0, b.Len())
	data := b.arr.Bytes()
	size := b.dtype.ItemSize()
	for off := 0; off < len(data); off += size {
		f, err := b.dtype.Float64(data[off : off+size])
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func encodeElement(t dtype.Type, v any) ([]byte, error) {
	switch x := v.(type) {
	case []byte:
		if len(x) != t.ItemSize() {
			return nil, fmt.Errorf("%w: %d bytes for %s element", ErrShapeMismatch, len(x), t)
		}
		return x, nil
	case map[string]any:
		if !t.IsStructured() {
			return nil, fmt.Errorf("azarr: cannot store %T in %s", v, t)
		}
		out := make([]byte, t.ItemSize())
		for _, f := range t.Fields {
			fv, ok := x[f.Name]
			if !ok {
				continue
			}
			enc, err := encodeElement(f.Type, fv)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			copy(out[f.Offset:], enc)
		}
		return out, nil
	case string:
		return encodeString(t, x)
	case bool:
		if x {
			return t.EncodeInt(1)
		}
		return t.EncodeInt(0)
	case float64:
		return t.EncodeValue(x)
	case float32:
		return t.EncodeValue(float64(x))
	case complex128:
		return t.EncodeComplex(x)
	case complex64:
		return t.EncodeComplex(complex128(x))
	case uint:
		return t.EncodeUint(uint64(x))
	case uint8:
		return t.EncodeUint(uint64(x))
	case uint16:
		return t.EncodeUint(uint64(x))
	case uint32:
		return t.EncodeUint(uint64(x))
	case uint64:
		return t.EncodeUint(x)
	}

	i, ok := toInt64(v)
	if !ok {
		return nil, fmt.Errorf("azarr: cannot store %T in %s", v, t)
	}
	return t.EncodeInt(i)
}

func encodeString(t dtype.Type, s string) ([]byte, error) {
	out := make([]byte, t.ItemSize())
	switch t.Kind {
	case dtype.Bytes:
		if len(s) > len(out) {
			return nil, fmt.Errorf("azarr: %q does not fit in %s", s, t)
		}
		copy(out, s)
	case dtype.Unicode:
		var bo binary.ByteOrder = binary.LittleEndian
		if t.Order == dtype.BigEndian {
			bo = binary.BigEndian
		}
		i := 0
		for _, r := range s {
			if i+4 > len(out) {
				return nil, fmt.Errorf("azarr: %q does not fit in %s", s, t)
			}
			bo.PutUint32(out[i:], uint32(r))
			i += 4
		}
	default:
		return nil, fmt.Errorf("azarr: cannot store a string in %s", t)
	}
	return out, nil
}

func toInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	}
	return 0, false
}
