package dtype

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Fill value spellings used by zarr for non-finite floats.
const (
	NaN              = "NaN"
	Infinity         = "Infinity"
	NegativeInfinity = "-Infinity"
)

func (t Type) byteOrder() binary.ByteOrder {
	if t.Order == BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Decode converts the bytes of one element into a Go value. Numeric kinds
// map to the matching sized Go type, structured types to map[string]any,
// byte and unicode strings to string, and void kinds to []byte.
func (t Type) Decode(b []byte) (any, error) {
	if len(b) != t.Size {
		return nil, fmt.Errorf("dtype: %s element has %d bytes, want %d", t, len(b), t.Size)
	}
	if t.IsStructured() {
		out := make(map[string]any, len(t.Fields))
		for _, f := range t.Fields {
			v, err := f.Type.Decode(b[f.Offset : f.Offset+f.Type.Size])
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", f.Name, err)
			}
			out[f.Name] = v
		}
		return out, nil
	}

	bo := t.byteOrder()
	switch t.Kind {
	case Bool:
		return b[0] != 0, nil
	case Int, Timedelta, Datetime:
		switch t.Size {
		case 1:
			return int8(b[0]), nil
		case 2:
			return int16(bo.Uint16(b)), nil
		case 4:
			return int32(bo.Uint32(b)), nil
		case 8:
			return int64(bo.Uint64(b)), nil
		}
	case Uint:
		switch t.Size {
		case 1:
			return b[0], nil
		case 2:
			return bo.Uint16(b), nil
		case 4:
			return bo.Uint32(b), nil
		case 8:
			return bo.Uint64(b), nil
		}
	case Float:
		switch t.Size {
		case 4:
			return math.Float32frombits(bo.Uint32(b)), nil
		case 8:
			return math.Float64frombits(bo.Uint64(b)), nil
		}
	case Complex:
		switch t.Size {
		case 8:
			re := math.Float32frombits(bo.Uint32(b[:4]))
			im := math.Float32frombits(bo.Uint32(b[4:]))
			return complex(re, im), nil
		case 16:
			re := math.Float64frombits(bo.Uint64(b[:8]))
			im := math.Float64frombits(bo.Uint64(b[8:]))
			return complex(re, im), nil
		}
	case Bytes:
		return strings.TrimRight(string(b), "\x00"), nil
	case Unicode:
		var sb strings.Builder
		for i := 0; i+4 <= len(b); i += 4 {
			r := rune(bo.Uint32(b[i:]))
			if r == 0 {
				break
			}
			sb.WriteRune(r)
		}
		return sb.String(), nil
	case Other:
		out := make([]byte, len(b))
		copy(out, b)
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
}

// Float64 converts one element to float64 for numeric kinds.
func (t Type) Float64(b []byte) (float64, error) {
	v, err := t.Decode(b)
	if err != nil {
		return 0, err
	}
	switch x := v.(type) {
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	}
	return 0, fmt.Errorf("%w: %s is not numeric", ErrUnsupported, t)
}

// EncodeFill converts a decoded JSON fill_value into element bytes.
// A nil value means "no fill" and returns nil bytes.
//
// Integer kinds are encoded exactly when v is a json.Number, as produced by
// a decoder with UseNumber; float64 values go through float conversion.
// Complex kinds accept a [re, im] list.
func (t Type) EncodeFill(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	if t.IsStructured() || t.Kind == Other || t.Kind == Bytes || t.Kind == Unicode {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("dtype: fill value for %s must be a base64 string, got %T", t, v)
		}
		raw, err := base64.StdEncoding.DecodeString(s)
		if err != nil {
			return nil, fmt.Errorf("dtype: decoding fill value: %w", err)
		}
		out := make([]byte, t.Size)
		if len(raw) > t.Size || (t.IsStructured() && len(raw) != t.Size) {
			return nil, fmt.Errorf("dtype: fill value has %d bytes, want %d", len(raw), t.Size)
		}
		copy(out, raw)
		return out, nil
	}

	switch t.Kind {
	case Bool:
		b, ok := v.(bool)
		if !ok {
			f, err := fillFloat(v)
			if err != nil {
				return nil, fmt.Errorf("dtype: fill value for %s must be a bool, got %T", t, v)
			}
			b = f != 0
		}
		if b {
			return t.EncodeInt(1)
		}
		return t.EncodeInt(0)
	case Int, Timedelta, Datetime:
		i, err := fillInt(v)
		if err != nil {
			return nil, fmt.Errorf("dtype: fill value for %s: %w", t, err)
		}
		return t.EncodeInt(i)
	case Uint:
		u, err := fillUint(v)
		if err != nil {
			return nil, fmt.Errorf("dtype: fill value for %s: %w", t, err)
		}
		return t.EncodeUint(u)
	case Complex:
		if parts, ok := v.([]any); ok {
			if len(parts) != 2 {
				return nil, fmt.Errorf("dtype: fill value for %s has %d parts, want 2", t, len(parts))
			}
			re, err := fillFloat(parts[0])
			if err != nil {
				return nil, fmt.Errorf("dtype: fill value for %s: real part: %w", t, err)
			}
			im, err := fillFloat(parts[1])
			if err != nil {
				return nil, fmt.Errorf("dtype: fill value for %s: imaginary part: %w", t, err)
			}
			return t.EncodeComplex(complex(re, im))
		}
	}

	f, err := fillFloat(v)
	if err != nil {
		return nil, fmt.Errorf("dtype: fill value for %s: %w", t, err)
	}
	return t.EncodeValue(f)
}

// EncodeValue converts a Go number into element bytes of a simple numeric type.
func (t Type) EncodeValue(f float64) ([]byte, error) {
	switch t.Kind {
	case Int, Timedelta, Datetime:
		return t.EncodeInt(int64(f))
	case Uint:
		return t.EncodeUint(uint64(f))
	case Complex:
		return t.EncodeComplex(complex(f, 0))
	}
	out, err := t.simple()
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case Bool:
		if f != 0 {
			out[0] = 1
		}
	case Float:
		bo := t.byteOrder()
		switch t.Size {
		case 4:
			bo.PutUint32(out, math.Float32bits(float32(f)))
		case 8:
			bo.PutUint64(out, math.Float64bits(f))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
		}
	default:
		return nil, fmt.Errorf("%w: numeric value for %s", ErrUnsupported, t)
	}
	return out, nil
}

// EncodeInt converts a signed integer into element bytes. Bool, integer and
// float kinds are accepted; values are truncated to the element width.
func (t Type) EncodeInt(i int64) ([]byte, error) {
	switch t.Kind {
	case Uint:
		return t.EncodeUint(uint64(i))
	case Float, Complex:
		return t.EncodeValue(float64(i))
	}
	out, err := t.simple()
	if err != nil {
		return nil, err
	}
	bo := t.byteOrder()
	switch t.Kind {
	case Bool:
		if i != 0 {
			out[0] = 1
		}
	case Int, Timedelta, Datetime:
		switch t.Size {
		case 1:
			out[0] = byte(int8(i))
		case 2:
			bo.PutUint16(out, uint16(int16(i)))
		case 4:
			bo.PutUint32(out, uint32(int32(i)))
		case 8:
			bo.PutUint64(out, uint64(i))
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
		}
	default:
		return nil, fmt.Errorf("%w: integer value for %s", ErrUnsupported, t)
	}
	return out, nil
}

// EncodeUint converts an unsigned integer into element bytes.
func (t Type) EncodeUint(u uint64) ([]byte, error) {
	if t.Kind != Uint {
		if u > math.MaxInt64 && (t.Kind == Int || t.Kind == Timedelta || t.Kind == Datetime) {
			return nil, fmt.Errorf("dtype: %d overflows %s", u, t)
		}
		if t.Kind == Float || t.Kind == Complex {
			return t.EncodeValue(float64(u))
		}
		return t.EncodeInt(int64(u))
	}
	out, err := t.simple()
	if err != nil {
		return nil, err
	}
	bo := t.byteOrder()
	switch t.Size {
	case 1:
		out[0] = byte(u)
	case 2:
		bo.PutUint16(out, uint16(u))
	case 4:
		bo.PutUint32(out, uint32(u))
	case 8:
		bo.PutUint64(out, u)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
	return out, nil
}

// EncodeComplex converts a complex number into element bytes of a complex
// type.
func (t Type) EncodeComplex(c complex128) ([]byte, error) {
	if t.Kind != Complex {
		return nil, fmt.Errorf("%w: complex value for %s", ErrUnsupported, t)
	}
	out, err := t.simple()
	if err != nil {
		return nil, err
	}
	bo := t.byteOrder()
	switch t.Size {
	case 8:
		bo.PutUint32(out, math.Float32bits(float32(real(c))))
		bo.PutUint32(out[4:], math.Float32bits(float32(imag(c))))
	case 16:
		bo.PutUint64(out, math.Float64bits(real(c)))
		bo.PutUint64(out[8:], math.Float64bits(imag(c)))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, t)
	}
	return out, nil
}

// simple allocates the bytes of one element of a simple type.
func (t Type) simple() ([]byte, error) {
	if t.IsStructured() {
		return nil, fmt.Errorf("%w: cannot encode a number as %s", ErrUnsupported, t)
	}
	return make([]byte, t.Size), nil
}

func fillFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case int:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		switch x {
		case NaN:
			return math.NaN(), nil
		case Infinity:
			return math.Inf(1), nil
		case NegativeInfinity:
			return math.Inf(-1), nil
		}
		return 0, fmt.Errorf("unrecognised string %q", x)
	}
	return 0, fmt.Errorf("unexpected %T", v)
}

func fillInt(v any) (int64, error) {
	switch x := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(x.String(), 10, 64); err == nil {
			return i, nil
		}
		f, err := x.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) >= 1<<63 {
			return 0, fmt.Errorf("%s is not an integer", x)
		}
		return int64(f), nil
	case int:
		return int64(x), nil
	case int64:
		return x, nil
	}
	f, err := fillFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%v is not an integer", v)
	}
	return int64(f), nil
}

func fillUint(v any) (uint64, error) {
	switch x := v.(type) {
	case json.Number:
		if u, err := strconv.ParseUint(x.String(), 10, 64); err == nil {
			return u, nil
		}
		f, err := x.Float64()
		if err != nil || f != math.Trunc(f) || f < 0 || f >= 1<<64 {
			return 0, fmt.Errorf("%s is not an unsigned integer", x)
		}
		return uint64(f), nil
	case uint64:
		return x, nil
	}
	f, err := fillFloat(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, fmt.Errorf("%v is not an unsigned integer", v)
	}
	return uint64(f), nil
}

// Project returns the packed structured type made of the named fields, and
// the source fields (with their offsets in t) in the same order.
func (t Type) Project(names []string) (Type, []Field, error) {
	if len(names) == 0 {
		return t, nil, nil
	}
	if !t.IsStructured() {
		return Type{}, nil, fmt.Errorf("dtype: field selection on non-structured type %s", t)
	}
	src := make([]Field, 0, len(names))
	types := make([]Type, 0, len(names))
	for _, name := range names {
		f, ok := t.Field(name)
		if !ok {
			return Type{}, nil, fmt.Errorf("dtype: no field named %q", name)
		}
		src = append(src, f)
		types = append(types, f.Type)
	}
	if len(names) == 1 {
		// a single field selects the member type itself, as numpy does
		return types[0], src, nil
	}
	sub, err := Structured(names, types)
	if err != nil {
		return Type{}, nil, err
	}
	return sub, src, nil
}
