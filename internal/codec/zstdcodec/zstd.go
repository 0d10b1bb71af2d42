// Package zstdcodec provides a zstd compression codec.
package zstdcodec

import (
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/discochess/azarr/internal/codec"
)

var (
	_ codec.Codec        = (*Codec)(nil)
	_ codec.BlockDecoder = (*Codec)(nil)
)

// blockDecoder is shared by every codec. DecodeAll is safe for concurrent
// use, and a read decodes many chunks at once.
var blockDecoder = sync.OnceValues(func() (*zstd.Decoder, error) {
	return zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
})

// Codec implements zstd compression.
type Codec struct {
	level zstd.EncoderLevel
}

// New returns a new zstd codec using the default encoder level.
func New() *Codec {
	return &Codec{level: zstd.SpeedDefault}
}

// NewLevel returns a zstd codec for a numcodecs compression level.
func NewLevel(level int) *Codec {
	return &Codec{level: zstd.EncoderLevelFromZstd(level)}
}

// Reader wraps r to decompress zstd data.
func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	decoder, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	return decoder.IOReadCloser(), nil
}

// DecodeBlock decompresses one whole zstd frame sequence.
func (c *Codec) DecodeBlock(src []byte) ([]byte, error) {
	d, err := blockDecoder()
	if err != nil {
		return nil, err
	}
	return d.DecodeAll(src, nil)
}

// Writer wraps w to compress data with zstd.
func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return zstd.NewWriter(w, zstd.WithEncoderLevel(c.level))
}

// ID returns "zstd".
func (c *Codec) ID() string {
	return "zstd"
}
