// Package meta reads zarr v2 metadata documents.
package meta

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/discochess/azarr/internal/chunkkey"
	"github.com/discochess/azarr/internal/dtype"
)

// Metadata document keys.
const (
	ArrayKey      = ".zarray"
	GroupKey      = ".zgroup"
	AttributesKey = ".zattrs"
)

// ZarrFormat is the only supported storage format version.
const ZarrFormat = 2

// ErrUnsupported is returned for metadata this package can parse but not read.
var ErrUnsupported = errors.New("meta: unsupported")

// Compressor identifies the chunk compressor and its configuration.
type Compressor struct {
	ID     string         `json:"id"`
	Config map[string]any `json:"-"`
}

func (c *Compressor) UnmarshalJSON(d []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(d, &raw); err != nil {
		return err
	}
	id, _ := raw["id"].(string)
	if id == "" {
		return fmt.Errorf("meta: compressor without id")
	}
	delete(raw, "id")
	c.ID = id
	c.Config = raw
	return nil
}

func (c Compressor) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Config)+1)
	for k, v := range c.Config {
		out[k] = v
	}
	out["id"] = c.ID
	return json.Marshal(out)
}

// Array is the content of a .zarray document.
type Array struct {
	ZarrFormat         int              `json:"zarr_format"`
	Shape              []int            `json:"shape"`
	Chunks             []int            `json:"chunks"`
	Dtype              dtype.Type       `json:"dtype"`
	Compressor         *Compressor      `json:"compressor"`
	FillValue          any              `json:"fill_value"`
	Order              string           `json:"order"`
	Filters            []map[string]any `json:"filters"`
	DimensionSeparator string           `json:"dimension_separator,omitempty"`
}

// ParseArray decodes and validates a .zarray document. Numbers in
// fill_value are kept as json.Number so integer fills survive exactly.
func ParseArray(data []byte) (*Array, error) {
	var a Array
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("meta: decoding %s: %w", ArrayKey, err)
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return &a, nil
}

// Validate checks that the array can be read.
func (a *Array) Validate() error {
	if a.ZarrFormat != ZarrFormat {
		return fmt.Errorf("%w: zarr_format %d", ErrUnsupported, a.ZarrFormat)
	}
	if len(a.Shape) != len(a.Chunks) {
		return fmt.Errorf("meta: shape %v and chunks %v have different ranks", a.Shape, a.Chunks)
	}
	for i := range a.Shape {
		if a.Shape[i] < 0 || a.Chunks[i] <= 0 {
			return fmt.Errorf("meta: invalid shape %v or chunks %v", a.Shape, a.Chunks)
		}
	}
	if a.Dtype.ItemSize() <= 0 {
		return fmt.Errorf("meta: dtype %s has no size", a.Dtype)
	}
	switch a.Order {
	case "C", "F":
	case "":
		a.Order = "C"
	default:
		return fmt.Errorf("meta: invalid order %q", a.Order)
	}
	if len(a.Filters) > 0 {
		return fmt.Errorf("%w: %d filters", ErrUnsupported, len(a.Filters))
	}
	if _, err := chunkkey.ForSeparator(a.DimensionSeparator); err != nil {
		return err
	}
	if _, err := a.Fill(); err != nil {
		return err
	}
	return nil
}

// Fill returns the fill value as element bytes, or nil if there is none.
func (a *Array) Fill() ([]byte, error) {
	b, err := a.Dtype.EncodeFill(a.FillValue)
	if err != nil {
		return nil, fmt.Errorf("meta: fill_value: %w", err)
	}
	return b, nil
}

// KeyStrategy returns the chunk key derivation for the array.
func (a *Array) KeyStrategy() chunkkey.Strategy {
	s, err := chunkkey.ForSeparator(a.DimensionSeparator)
	if err != nil {
		return chunkkey.Dotted()
	}
	return s
}

// CompressorID returns the compressor id, or "" for uncompressed chunks.
func (a *Array) CompressorID() string {
	if a.Compressor == nil {
		return ""
	}
	return a.Compressor.ID
}

// NChunks returns the number of chunks in the array's grid.
func (a *Array) NChunks() int {
	n := 1
	for i := range a.Shape {
		n *= (a.Shape[i] + a.Chunks[i] - 1) / a.Chunks[i]
	}
	return n
}

// Group is the content of a .zgroup document.
type Group struct {
	ZarrFormat int `json:"zarr_format"`
}

// ParseGroup decodes and validates a .zgroup document.
func ParseGroup(data []byte) (*Group, error) {
	var g Group
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("meta: decoding %s: %w", GroupKey, err)
	}
	if g.ZarrFormat != ZarrFormat {
		return nil, fmt.Errorf("%w: zarr_format %d", ErrUnsupported, g.ZarrFormat)
	}
	return &g, nil
}

// Attributes holds user metadata from a .zattrs document.
type Attributes map[string]any

// ParseAttributes decodes a .zattrs document.
func ParseAttributes(data []byte) (Attributes, error) {
	attrs := Attributes{}
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("meta: decoding %s: %w", AttributesKey, err)
	}
	return attrs, nil
}

// Keys returns the attribute names in sorted order.
func (a Attributes) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// NormalizePath cleans a node path: backslashes become slashes, and leading,
// trailing and repeated slashes are removed. "." and ".." segments are
// rejected.
func NormalizePath(p string) (string, error) {
	p = strings.ReplaceAll(p, `\`, "/")
	parts := strings.Split(p, "/")
	out := parts[:0]
	for _, part := range parts {
		switch part {
		case "":
			continue
		case ".", "..":
			return "", fmt.Errorf("meta: path %q contains relative segment %q", p, part)
		}
		out = append(out, part)
	}
	return strings.Join(out, "/"), nil
}

// Key joins a normalised node path and a document key.
func Key(path, key string) string {
	return chunkkey.Join(path, key)
}
