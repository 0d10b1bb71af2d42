// Package noopcodec handles chunks of arrays whose compressor is null. The
// stored bytes are the chunk's elements.
package noopcodec

import (
	"bytes"
	"io"

	"github.com/discochess/azarr/internal/codec"
)

var (
	_ codec.Codec        = (*Codec)(nil)
	_ codec.BlockDecoder = (*Codec)(nil)
)

// Codec passes chunk bytes through unchanged.
type Codec struct{}

func New() *Codec {
	return &Codec{}
}

func (c *Codec) Reader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(r), nil
}

func (c *Codec) Writer(w io.Writer) (io.WriteCloser, error) {
	return writeCloser{w}, nil
}

// DecodeBlock returns a copy of src. Stores may hand out their own backing
// memory, so a decoded chunk never shares it.
func (c *Codec) DecodeBlock(src []byte) ([]byte, error) {
	return bytes.Clone(src), nil
}

// ID is empty: the metadata has "compressor": null.
func (c *Codec) ID() string {
	return ""
}

type writeCloser struct {
	io.Writer
}

func (writeCloser) Close() error { return nil }
