// Package zlibcodec provides a zlib compression codec.
package zlibcodec

import (
	"compress/zlib"
	"io"

	"github.com/discochess/azarr/internal/codec"
)

// Compile-time check that Codec implements codec.Codec.
var _ codec.Codec = (*Codec)(nil)

// Codec implements zlib compression.
type Codec struct {
	level int
}

// New returns a new zlib codec using the default level.
func New() *Codec {
	return &Codec{level: zlib.DefaultCompression}
}

// NewLevel returns a zlib codec with the given compression level.
func NewLevel(level int) *Codec {
	return &Codec{level: level}
}

// Reader wraps r to decompress zlib data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return zlib.NewReader(r)
}

// Writer wraps w to compress data with zlib.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zlib.NewWriterLevel(w, c.level)
}

// ID returns "zlib".
func (c *Codec) ID() string {
	return "zlib"
}
