// Package dtype parses NumPy array-protocol type strings as used by zarr
// metadata and converts between element bytes and Go values.
//
// A simple type string has three parts:
//   - a byte order character: '<' little-endian, '>' big-endian, '|' not relevant
//   - a basic type character (b, i, u, f, c, m, M, S, U, V)
//   - the number of bytes the type uses
//
// Structured types are JSON lists of [name, typestr] pairs.
package dtype

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnsupported is returned for types that parse but cannot be decoded.
var ErrUnsupported = errors.New("dtype: unsupported type")

// ByteOrder is the byte order character of a type string.
type ByteOrder rune

const (
	NotRelevant  ByteOrder = '|'
	LittleEndian ByteOrder = '<'
	BigEndian    ByteOrder = '>'
)

func parseByteOrder(r rune) (ByteOrder, error) {
	switch o := ByteOrder(r); o {
	case NotRelevant, LittleEndian, BigEndian:
		return o, nil
	}
	return 0, fmt.Errorf("dtype: unsupported byte order %q", r)
}

// Kind is the basic type character of a type string.
type Kind rune

const (
	Bool       Kind = 'b'
	Int        Kind = 'i'
	Uint       Kind = 'u'
	Float      Kind = 'f'
	Complex    Kind = 'c'
	Timedelta  Kind = 'm'
	Datetime   Kind = 'M'
	Bytes      Kind = 'S'
	Unicode    Kind = 'U'
	Other      Kind = 'V'
	structured Kind = 0
)

var kindNames = map[Kind]string{
	Bool:      "bool",
	Int:       "int",
	Uint:      "uint",
	Float:     "float",
	Complex:   "complex",
	Timedelta: "timedelta",
	Datetime:  "datetime",
	Bytes:     "bytes",
	Unicode:   "unicode",
	Other:     "void",
}

func parseKind(r rune) (Kind, error) {
	k := Kind(r)
	if _, ok := kindNames[k]; !ok {
		return 0, fmt.Errorf("dtype: unsupported basic type %q", r)
	}
	return k, nil
}

// Field is one member of a structured type.
type Field struct {
	Name   string
	Type   Type
	Offset int
}

// Type describes one array element. A Type is either simple (Kind != 0) or
// structured (Fields != nil).
type Type struct {
	Order  ByteOrder
	Kind   Kind
	Size   int
	Units  string
	Fields []Field
}

var (
	_ json.Unmarshaler = (*Type)(nil)
	_ json.Marshaler   = Type{}
)

// Parse parses a simple type string such as "<f8" or "|b1".
func Parse(s string) (Type, error) {
	// zarr-python escapes these when writing JSON through some paths.
	s = strings.Replace(s, "&lt;", "<", 1)
	s = strings.Replace(s, "&gt;", ">", 1)

	if len(s) < 3 {
		return Type{}, fmt.Errorf("dtype: %q is too short", s)
	}

	var (
		t   Type
		err error
	)
	if t.Order, err = parseByteOrder(rune(s[0])); err != nil {
		return Type{}, err
	}
	if t.Kind, err = parseKind(rune(s[1])); err != nil {
		return Type{}, err
	}

	rest := s[2:]
	if i := strings.IndexByte(rest, '['); i >= 0 {
		t.Units = rest[i:]
		rest = rest[:i]
	}
	size, err := strconv.Atoi(rest)
	if err != nil {
		return Type{}, fmt.Errorf("dtype: invalid size in %q: %w", s, err)
	}
	if size <= 0 {
		return Type{}, fmt.Errorf("dtype: invalid size in %q", s)
	}
	t.Size = size
	if t.Kind == Unicode {
		// numpy counts UCS4 code points, not bytes
		t.Size = size * 4
	}
	return t, nil
}

// MustParse is like Parse but panics on error.
func MustParse(s string) Type {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// Structured builds a packed structured type from named members.
func Structured(names []string, types []Type) (Type, error) {
	if len(names) != len(types) {
		return Type{}, fmt.Errorf("dtype: %d names for %d types", len(names), len(types))
	}
	if len(names) == 0 {
		return Type{}, errors.New("dtype: structured type has no fields")
	}
	t := Type{Order: NotRelevant, Kind: structured}
	seen := make(map[string]struct{}, len(names))
	for i, name := range names {
		if _, dup := seen[name]; dup {
			return Type{}, fmt.Errorf("dtype: duplicate field %q", name)
		}
		seen[name] = struct{}{}
		t.Fields = append(t.Fields, Field{Name: name, Type: types[i], Offset: t.Size})
		t.Size += types[i].Size
	}
	return t, nil
}

// IsStructured reports whether t has named fields.
func (t Type) IsStructured() bool { return t.Fields != nil }

// ItemSize returns the number of bytes in one element.
func (t Type) ItemSize() int { return t.Size }

// Equal reports whether t and o describe the same element layout. The byte
// order is ignored where it cannot matter.
func (t Type) Equal(o Type) bool {
	if t.IsStructured() || o.IsStructured() {
		if len(t.Fields) != len(o.Fields) || t.Size != o.Size {
			return false
		}
		for i, f := range t.Fields {
			g := o.Fields[i]
			if f.Name != g.Name || f.Offset != g.Offset || !f.Type.Equal(g.Type) {
				return false
			}
		}
		return true
	}
	if t.Kind != o.Kind || t.Size != o.Size || t.Units != o.Units {
		return false
	}
	return t.orderless() || t.byteOrder() == o.byteOrder()
}

// orderless reports whether the element bytes do not depend on byte order.
func (t Type) orderless() bool {
	return t.Size == 1 || t.Kind == Bytes || t.Kind == Other
}

// Field returns the named field.
func (t Type) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

func (t Type) String() string {
	if t.IsStructured() {
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("(%q, %s)", f.Name, f.Type)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	size := t.Size
	if t.Kind == Unicode {
		size /= 4
	}
	return fmt.Sprintf("%c%c%d%s", t.Order, t.Kind, size, t.Units)
}

// Human returns a short human readable name such as "float" or "struct".
func (t Type) Human() string {
	if t.IsStructured() {
		return "struct"
	}
	return kindNames[t.Kind]
}

func (t Type) MarshalJSON() ([]byte, error) {
	if !t.IsStructured() {
		return json.Marshal(t.String())
	}
	fields := make([][2]any, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = [2]any{f.Name, f.Type}
	}
	return json.Marshal(fields)
}

func (t *Type) UnmarshalJSON(d []byte) error {
	var v any
	if err := json.Unmarshal(d, &v); err != nil {
		return err
	}
	parsed, err := fromJSON(v)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func fromJSON(v any) (Type, error) {
	switch x := v.(type) {
	case string:
		return Parse(x)
	case []any:
		names := make([]string, 0, len(x))
		types := make([]Type, 0, len(x))
		for i, el := range x {
			pair, ok := el.([]any)
			if !ok || len(pair) < 2 {
				return Type{}, fmt.Errorf("dtype: field %d: want [name, type]", i)
			}
			if len(pair) > 2 {
				return Type{}, fmt.Errorf("dtype: field %d: subarray fields: %w", i, ErrUnsupported)
			}
			name, ok := pair[0].(string)
			if !ok {
				return Type{}, fmt.Errorf("dtype: field %d: name must be a string, got %T", i, pair[0])
			}
			ft, err := fromJSON(pair[1])
			if err != nil {
				return Type{}, fmt.Errorf("field %q: %w", name, err)
			}
			names = append(names, name)
			types = append(types, ft)
		}
		return Structured(names, types)
	default:
		return Type{}, fmt.Errorf("dtype: unexpected JSON %T", v)
	}
}
