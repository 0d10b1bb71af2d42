package meta

import (
	"errors"
	"math"
	"testing"

	"github.com/discochess/azarr/internal/dtype"
)

const arrayDoc = `{
	"zarr_format": 2,
	"shape": [10],
	"chunks": [5],
	"dtype": "<f8",
	"compressor": {"id": "zstd", "level": 1},
	"fill_value": "NaN",
	"order": "C",
	"filters": null
}`

func TestParseArray(t *testing.T) {
	a, err := ParseArray([]byte(arrayDoc))
	if err != nil {
		t.Fatalf("ParseArray() error = %v", err)
	}
	if a.Shape[0] != 10 || a.Chunks[0] != 5 {
		t.Errorf("shape = %v chunks = %v", a.Shape, a.Chunks)
	}
	if a.CompressorID() != "zstd" || a.Compressor.Config["level"] != 1.0 {
		t.Errorf("compressor = %+v", a.Compressor)
	}
	if a.KeyStrategy().Name() != "dotted" {
		t.Errorf("KeyStrategy() = %s, want dotted", a.KeyStrategy().Name())
	}
	if a.NChunks() != 2 {
		t.Errorf("NChunks() = %d, want 2", a.NChunks())
	}

	fill, err := a.Fill()
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if f, _ := a.Dtype.Float64(fill); !math.IsNaN(f) {
		t.Errorf("Fill() = %v, want NaN", f)
	}
}

func TestParseArray_Defaults(t *testing.T) {
	a, err := ParseArray([]byte(`{"zarr_format":2,"shape":[4,4],"chunks":[2,2],"dtype":"<i4",
		"compressor":null,"fill_value":null,"order":"","filters":[],"dimension_separator":"/"}`))
	if err != nil {
		t.Fatalf("ParseArray() error = %v", err)
	}
	if a.Order != "C" {
		t.Errorf("Order = %q, want C", a.Order)
	}
	if a.CompressorID() != "" {
		t.Errorf("CompressorID() = %q, want empty", a.CompressorID())
	}
	if fill, _ := a.Fill(); fill != nil {
		t.Errorf("Fill() = %v, want nil", fill)
	}
	if a.KeyStrategy().Name() != "nested" {
		t.Errorf("KeyStrategy() = %s, want nested", a.KeyStrategy().Name())
	}
}

func TestParseArray_IntegerFill(t *testing.T) {
	tests := []struct {
		dtype string
		fill  string
		want  any
	}{
		{"<u8", "18446744073709551615", uint64(math.MaxUint64)},
		{"<i8", "9007199254740993", int64(9007199254740993)},
		{"<i8", "-9223372036854775808", int64(math.MinInt64)},
		{"<c16", "[1.5, -2]", complex(1.5, -2)},
	}
	for _, tt := range tests {
		t.Run(tt.dtype+"/"+tt.fill, func(t *testing.T) {
			a, err := ParseArray([]byte(`{"zarr_format":2,"shape":[4],"chunks":[2],"dtype":"` + tt.dtype +
				`","compressor":null,"fill_value":` + tt.fill + `,"order":"C","filters":null}`))
			if err != nil {
				t.Fatalf("ParseArray() error = %v", err)
			}
			fill, err := a.Fill()
			if err != nil {
				t.Fatalf("Fill() error = %v", err)
			}
			if got, _ := a.Dtype.Decode(fill); got != tt.want {
				t.Errorf("Fill() decodes to %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestParseArray_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		doc         string
		unsupported bool
	}{
		{"format", `{"zarr_format":3,"shape":[1],"chunks":[1],"dtype":"<f8","order":"C"}`, true},
		{"filters", `{"zarr_format":2,"shape":[1],"chunks":[1],"dtype":"<f8","order":"C","filters":[{"id":"delta"}]}`, true},
		{"rank", `{"zarr_format":2,"shape":[1,2],"chunks":[1],"dtype":"<f8","order":"C"}`, false},
		{"chunk", `{"zarr_format":2,"shape":[1],"chunks":[0],"dtype":"<f8","order":"C"}`, false},
		{"order", `{"zarr_format":2,"shape":[1],"chunks":[1],"dtype":"<f8","order":"K"}`, false},
		{"separator", `{"zarr_format":2,"shape":[1],"chunks":[1],"dtype":"<f8","order":"C","dimension_separator":"-"}`, false},
		{"fill", `{"zarr_format":2,"shape":[1],"chunks":[1],"dtype":"<f8","order":"C","fill_value":"nope"}`, false},
		{"json", `{`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArray([]byte(tt.doc))
			if err == nil {
				t.Fatal("ParseArray() expected error")
			}
			if got := errors.Is(err, ErrUnsupported); got != tt.unsupported {
				t.Errorf("errors.Is(ErrUnsupported) = %v, want %v (err = %v)", got, tt.unsupported, err)
			}
		})
	}
}

func TestParseArray_Structured(t *testing.T) {
	a, err := ParseArray([]byte(`{"zarr_format":2,"shape":[3],"chunks":[3],
		"dtype":[["a","|u1"],["b","|u1"]],"compressor":null,"fill_value":"AQI=","order":"C","filters":null}`))
	if err != nil {
		t.Fatalf("ParseArray() error = %v", err)
	}
	fill, err := a.Fill()
	if err != nil {
		t.Fatalf("Fill() error = %v", err)
	}
	if len(fill) != 2 || fill[0] != 1 || fill[1] != 2 {
		t.Errorf("Fill() = %v, want [1 2]", fill)
	}
	if !a.Dtype.IsStructured() || a.Dtype.Kind == dtype.Float {
		t.Errorf("Dtype = %s", a.Dtype)
	}
}

func TestParseGroup(t *testing.T) {
	if _, err := ParseGroup([]byte(`{"zarr_format":2}`)); err != nil {
		t.Errorf("ParseGroup() error = %v", err)
	}
	if _, err := ParseGroup([]byte(`{"zarr_format":1}`)); !errors.Is(err, ErrUnsupported) {
		t.Errorf("ParseGroup() error = %v, want ErrUnsupported", err)
	}
}

func TestParseAttributes(t *testing.T) {
	attrs, err := ParseAttributes([]byte(`{"units":"m","scale":2}`))
	if err != nil {
		t.Fatalf("ParseAttributes() error = %v", err)
	}
	keys := attrs.Keys()
	if len(keys) != 2 || keys[0] != "scale" || keys[1] != "units" {
		t.Errorf("Keys() = %v", keys)
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in, want string
		wantErr  bool
	}{
		{"", "", false},
		{"/", "", false},
		{"a/b", "a/b", false},
		{"/a//b/", "a/b", false},
		{`a\b`, "a/b", false},
		{"a/../b", "", true},
		{"./a", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizePath(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("NormalizePath(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestKey(t *testing.T) {
	if got := Key("", ArrayKey); got != ".zarray" {
		t.Errorf("Key() = %q, want .zarray", got)
	}
	if got := Key("grp/arr", ArrayKey); got != "grp/arr/.zarray" {
		t.Errorf("Key() = %q, want grp/arr/.zarray", got)
	}
}
