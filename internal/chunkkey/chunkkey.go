// Package chunkkey defines how chunk grid coordinates map to storage keys.
package chunkkey

import (
	"fmt"
	"strconv"
	"strings"
)

// Strategy maps chunk coordinates to the key of the chunk's blob, relative to
// the array's own path.
type Strategy interface {
	// Name returns a human-readable name for this strategy.
	Name() string

	// Key returns the key for the chunk at coords. A zero-dimensional array
	// has a single chunk with key "0".
	Key(coords []int) string
}

// ForSeparator returns the strategy for a dimension_separator value.
// An empty separator means the zarr v2 default, ".".
func ForSeparator(sep string) (Strategy, error) {
	switch sep {
	case "", ".":
		return Dotted(), nil
	case "/":
		return Nested(), nil
	default:
		return nil, fmt.Errorf("chunkkey: unsupported dimension separator %q", sep)
	}
}

// Join prefixes key with the array path. The root path is empty.
func Join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "/" + key
}

type separated struct {
	name string
	sep  string
}

// Dotted returns the default strategy producing keys such as "1.4".
func Dotted() Strategy { return separated{name: "dotted", sep: "."} }

// Nested returns the strategy producing directory-like keys such as "1/4".
func Nested() Strategy { return separated{name: "nested", sep: "/"} }

func (s separated) Name() string { return s.name }

func (s separated) Key(coords []int) string {
	switch len(coords) {
	case 0:
		return "0"
	case 1:
		return strconv.Itoa(coords[0])
	}
	var sb strings.Builder
	for i, c := range coords {
		if i > 0 {
			sb.WriteString(s.sep)
		}
		sb.WriteString(strconv.Itoa(c))
	}
	return sb.String()
}
