package dtype

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		order    ByteOrder
		kind     Kind
		itemSize int
		units    string
	}{
		{"<f8", LittleEndian, Float, 8, ""},
		{">i4", BigEndian, Int, 4, ""},
		{"|b1", NotRelevant, Bool, 1, ""},
		{"|u1", NotRelevant, Uint, 1, ""},
		{"<M8[ns]", LittleEndian, Datetime, 8, "[ns]"},
		{"<U3", LittleEndian, Unicode, 12, ""},
		{"&lt;f4", LittleEndian, Float, 4, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got.Order != tt.order || got.Kind != tt.kind || got.ItemSize() != tt.itemSize || got.Units != tt.units {
				t.Errorf("Parse(%q) = %+v", tt.input, got)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, s := range []string{"", "<f", "?f8", "<x8", "<fz", "<f0"} {
		if _, err := Parse(s); err == nil {
			t.Errorf("Parse(%q) expected error", s)
		}
	}
}

func TestType_String(t *testing.T) {
	for _, s := range []string{"<f8", ">i2", "|b1", "<U5", "<m8[s]"} {
		if got := MustParse(s).String(); got != s {
			t.Errorf("String() = %q, want %q", got, s)
		}
	}
}

func TestType_JSON_Structured(t *testing.T) {
	var typ Type
	if err := json.Unmarshal([]byte(`[["x", "<i4"], ["y", "<f8"], ["ok", "|b1"]]`), &typ); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if !typ.IsStructured() {
		t.Fatal("IsStructured() = false, want true")
	}
	if typ.ItemSize() != 13 {
		t.Errorf("ItemSize() = %d, want 13", typ.ItemSize())
	}
	y, ok := typ.Field("y")
	if !ok || y.Offset != 4 {
		t.Errorf("Field(y) = %+v, %v", y, ok)
	}

	data, err := json.Marshal(typ)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `[["x","<i4"],["y","<f8"],["ok","|b1"]]` {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestType_JSON_SubarrayUnsupported(t *testing.T) {
	var typ Type
	err := json.Unmarshal([]byte(`[["x", "<i4", [2]]]`), &typ)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Unmarshal() error = %v, want ErrUnsupported", err)
	}
}

func TestType_DecodeEncode(t *testing.T) {
	tests := []struct {
		typ  string
		fill any
		want any
	}{
		{"<f8", 1.5, 1.5},
		{">f4", -2.0, float32(-2)},
		{"<i2", -7.0, int16(-7)},
		{">u4", 42.0, uint32(42)},
		{"|u1", 255.0, uint8(255)},
		{"|b1", true, true},
		{"<i8", 3.0, int64(3)},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			typ := MustParse(tt.typ)
			b, err := typ.EncodeFill(tt.fill)
			if err != nil {
				t.Fatalf("EncodeFill() error = %v", err)
			}
			got, err := typ.Decode(b)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestType_EncodeFill_NonFinite(t *testing.T) {
	typ := MustParse("<f8")

	b, err := typ.EncodeFill(NaN)
	if err != nil {
		t.Fatalf("EncodeFill(NaN) error = %v", err)
	}
	if f, _ := typ.Float64(b); !math.IsNaN(f) {
		t.Errorf("EncodeFill(NaN) decoded to %v", f)
	}

	b, _ = typ.EncodeFill(NegativeInfinity)
	if f, _ := typ.Float64(b); !math.IsInf(f, -1) {
		t.Errorf("EncodeFill(-Infinity) decoded to %v", f)
	}
}

func TestType_EncodeFill_Nil(t *testing.T) {
	b, err := MustParse("<f8").EncodeFill(nil)
	if err != nil || b != nil {
		t.Errorf("EncodeFill(nil) = %v, %v; want nil, nil", b, err)
	}
}

func TestType_EncodeFill_StructuredBase64(t *testing.T) {
	typ, err := Structured([]string{"a", "b"}, []Type{MustParse("|u1"), MustParse("|u1")})
	if err != nil {
		t.Fatalf("Structured() error = %v", err)
	}

	// "AQI=" is base64 for {0x01, 0x02}.
	b, err := typ.EncodeFill("AQI=")
	if err != nil {
		t.Fatalf("EncodeFill() error = %v", err)
	}
	v, err := typ.Decode(b)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	m := v.(map[string]any)
	if m["a"] != uint8(1) || m["b"] != uint8(2) {
		t.Errorf("Decode() = %v", m)
	}

	if _, err := typ.EncodeFill("AQ=="); err == nil {
		t.Error("EncodeFill() expected error for short structured fill")
	}
}

func TestType_Project(t *testing.T) {
	typ, _ := Structured(
		[]string{"x", "y", "z"},
		[]Type{MustParse("<i4"), MustParse("<f8"), MustParse("|u1")},
	)

	sub, src, err := typ.Project([]string{"z", "x"})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if sub.ItemSize() != 5 {
		t.Errorf("ItemSize() = %d, want 5", sub.ItemSize())
	}
	if len(src) != 2 || src[0].Offset != 12 || src[1].Offset != 0 {
		t.Errorf("Project() source fields = %+v", src)
	}

	single, _, err := typ.Project([]string{"y"})
	if err != nil {
		t.Fatalf("Project() error = %v", err)
	}
	if single.IsStructured() || single.Kind != Float {
		t.Errorf("single field projection = %s, want <f8", single)
	}

	if _, _, err := typ.Project([]string{"missing"}); err == nil {
		t.Error("Project() expected error for unknown field")
	}
	if _, _, err := MustParse("<f8").Project([]string{"x"}); err == nil {
		t.Error("Project() expected error on simple type")
	}
}

func TestType_DecodeStrings(t *testing.T) {
	v, err := MustParse("|S4").Decode([]byte{'a', 'b', 0, 0})
	if err != nil || v != "ab" {
		t.Errorf("Decode(|S4) = %v, %v", v, err)
	}
	v, err = MustParse("<U2").Decode([]byte{'h', 0, 0, 0, 'i', 0, 0, 0})
	if err != nil || v != "hi" {
		t.Errorf("Decode(<U2) = %v, %v", v, err)
	}
}

func TestType_EncodeFill_ExactIntegers(t *testing.T) {
	tests := []struct {
		typ  string
		fill any
		want any
	}{
		{"<i8", json.Number("9007199254740993"), int64(9007199254740993)},
		{"<i8", json.Number("-9223372036854775808"), int64(math.MinInt64)},
		{"<i8", json.Number("9223372036854775807"), int64(math.MaxInt64)},
		{"<u8", json.Number("18446744073709551615"), uint64(math.MaxUint64)},
		{">u8", json.Number("9007199254740993"), uint64(9007199254740993)},
		{"<u2", json.Number("65535"), uint16(65535)},
		{"<i4", json.Number("3.0"), int32(3)},
		{"<m8[s]", json.Number("-1"), int64(-1)},
		{"<f8", json.Number("0.25"), 0.25},
		{"|b1", json.Number("1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.typ+"/"+string(tt.fill.(json.Number)), func(t *testing.T) {
			typ := MustParse(tt.typ)
			b, err := typ.EncodeFill(tt.fill)
			if err != nil {
				t.Fatalf("EncodeFill() error = %v", err)
			}
			got, err := typ.Decode(b)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestType_EncodeFill_IntegerInvalid(t *testing.T) {
	tests := []struct {
		typ  string
		fill any
	}{
		{"<u8", json.Number("-1")},
		{"<u8", json.Number("18446744073709551616")},
		{"<i8", json.Number("9223372036854775808")},
		{"<i4", json.Number("1.5")},
		{"<i8", NaN},
		{"<u4", -1.0},
	}
	for _, tt := range tests {
		if _, err := MustParse(tt.typ).EncodeFill(tt.fill); err == nil {
			t.Errorf("EncodeFill(%v) on %s expected error", tt.fill, tt.typ)
		}
	}
}

func TestType_EncodeFill_Complex(t *testing.T) {
	tests := []struct {
		typ  string
		fill any
		want any
	}{
		{"<c16", []any{json.Number("1.5"), json.Number("-2")}, complex(1.5, -2)},
		{">c8", []any{0.5, 2.0}, complex64(complex(0.5, 2))},
		{"<c16", json.Number("3"), complex(3, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			typ := MustParse(tt.typ)
			b, err := typ.EncodeFill(tt.fill)
			if err != nil {
				t.Fatalf("EncodeFill() error = %v", err)
			}
			got, err := typ.Decode(b)
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}

	b, err := MustParse("<c16").EncodeFill([]any{NaN, NegativeInfinity})
	if err != nil {
		t.Fatalf("EncodeFill([NaN, -Infinity]) error = %v", err)
	}
	v, _ := MustParse("<c16").Decode(b)
	if c := v.(complex128); !math.IsNaN(real(c)) || !math.IsInf(imag(c), -1) {
		t.Errorf("EncodeFill([NaN, -Infinity]) decoded to %v", c)
	}

	if _, err := MustParse("<c16").EncodeFill([]any{1.0}); err == nil {
		t.Error("EncodeFill() expected error for a one-part complex fill")
	}
}

func TestType_Equal(t *testing.T) {
	s1, _ := Structured([]string{"a", "b"}, []Type{MustParse("<i4"), MustParse("|u1")})
	s2, _ := Structured([]string{"a", "b"}, []Type{MustParse("<i4"), MustParse("|u1")})
	s3, _ := Structured([]string{"a", "c"}, []Type{MustParse("<i4"), MustParse("|u1")})

	tests := []struct {
		a, b Type
		want bool
	}{
		{MustParse("<f8"), MustParse("<f8"), true},
		{MustParse("<f8"), MustParse("<i8"), false},
		{MustParse("<f8"), MustParse(">f8"), false},
		{MustParse("<f8"), MustParse("<f4"), false},
		{MustParse("|u1"), MustParse("<u1"), true},
		{MustParse("<S4"), MustParse("|S4"), true},
		{MustParse("<M8[ns]"), MustParse("<M8[s]"), false},
		{s1, s2, true},
		{s1, s3, false},
		{s1, MustParse("<i8"), false},
	}
	for _, tt := range tests {
		if got := tt.a.Equal(tt.b); got != tt.want {
			t.Errorf("%s.Equal(%s) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestType_EncodeInt(t *testing.T) {
	tests := []struct {
		typ  string
		enc  func(Type) ([]byte, error)
		want any
	}{
		{"<i8", func(t Type) ([]byte, error) { return t.EncodeInt(math.MaxInt64) }, int64(math.MaxInt64)},
		{"<u8", func(t Type) ([]byte, error) { return t.EncodeUint(math.MaxUint64) }, uint64(math.MaxUint64)},
		{"<f8", func(t Type) ([]byte, error) { return t.EncodeInt(-3) }, -3.0},
		{"<c8", func(t Type) ([]byte, error) { return t.EncodeComplex(complex(1, 2)) }, complex64(complex(1, 2))},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			typ := MustParse(tt.typ)
			b, err := tt.enc(typ)
			if err != nil {
				t.Fatalf("encode error = %v", err)
			}
			if got, _ := typ.Decode(b); got != tt.want {
				t.Errorf("Decode() = %#v, want %#v", got, tt.want)
			}
		})
	}

	if _, err := MustParse("<i8").EncodeUint(math.MaxUint64); err == nil {
		t.Error("EncodeUint() expected overflow error for <i8")
	}
	if _, err := MustParse("<f8").EncodeComplex(1); err == nil {
		t.Error("EncodeComplex() expected error for <f8")
	}
}
