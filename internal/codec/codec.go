// Package codec provides compression and decompression for chunk data.
package codec

import (
	"bytes"
	"io"
)

// Codec provides compression and decompression functionality.
type Codec interface {
	// Reader wraps r to decompress data read from it.
	Reader(r io.Reader) (io.ReadCloser, error)
	// Writer wraps w to compress data written to it.
	Writer(w io.Writer) (io.WriteCloser, error)
	// ID returns the compressor id used in array metadata (e.g., "zstd", "gzip").
	// Returns empty string for no compression.
	ID() string
}

// BlockDecoder is implemented by codecs that can decode a whole chunk in
// one call. The result must not alias src.
type BlockDecoder interface {
	DecodeBlock(src []byte) ([]byte, error)
}

// Decode decompresses a whole chunk.
func Decode(c Codec, data []byte) ([]byte, error) {
	if bd, ok := c.(BlockDecoder); ok {
		return bd.DecodeBlock(data)
	}
	r, err := c.Reader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Encode compresses a whole chunk.
func Encode(c Codec, data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := c.Writer(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
