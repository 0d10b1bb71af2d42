// Package gzipcodec reads and writes chunks compressed by the numcodecs
// "gzip" compressor: a complete gzip stream per chunk, possibly made of
// several members.
package gzipcodec

import (
	"compress/gzip"
	"io"

	"github.com/discochess/azarr/internal/codec"
)

var _ codec.Codec = (*Codec)(nil)

// DefaultLevel is the level numcodecs uses when a gzip compressor has no
// level configured.
const DefaultLevel = 1

// Codec is the gzip chunk compressor.
type Codec struct {
	level int
}

// New returns a gzip codec writing at DefaultLevel.
func New() *Codec {
	return &Codec{level: DefaultLevel}
}

// NewLevel returns a gzip codec writing at level. Reading does not depend on
// the level.
func NewLevel(level int) *Codec {
	return &Codec{level: level}
}

// Level returns the level chunks are written at.
func (c *Codec) Level() int { return c.level }

// Reader decompresses every member of the gzip stream in r.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

// Writer compresses into w at the codec's level.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriterLevel(w, c.level)
}

// ID returns the numcodecs compressor id.
func (c *Codec) ID() string {
	return "gzip"
}
