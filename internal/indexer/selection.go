package indexer

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind distinguishes integer selections from slices.
type Kind int

const (
	// KindSlice selects a range of indices and keeps the dimension.
	KindSlice Kind = iota
	// KindIndex selects a single index and drops the dimension.
	KindIndex
)

// Selection describes what to read along one dimension. The zero value
// selects the whole dimension.
type Selection struct {
	Kind  Kind
	Index int
	Start *int
	Stop  *int
	// Step must be positive; zero means 1.
	Step int
}

// Index selects a single index. Negative values count from the end.
func Index(i int) Selection { return Selection{Kind: KindIndex, Index: i} }

// All selects the whole dimension.
func All() Selection { return Selection{} }

// Slice selects [start, stop).
func Slice(start, stop int) Selection { return Selection{Start: &start, Stop: &stop} }

// SliceStep selects [start, stop) every step indices.
func SliceStep(start, stop, step int) Selection {
	return Selection{Start: &start, Stop: &stop, Step: step}
}

// From selects [start, end of dimension).
func From(start int) Selection { return Selection{Start: &start} }

// To selects [0, stop).
func To(stop int) Selection { return Selection{Stop: &stop} }

func (s Selection) String() string {
	if s.Kind == KindIndex {
		return strconv.Itoa(s.Index)
	}
	var sb strings.Builder
	if s.Start != nil {
		sb.WriteString(strconv.Itoa(*s.Start))
	}
	sb.WriteByte(':')
	if s.Stop != nil {
		sb.WriteString(strconv.Itoa(*s.Stop))
	}
	if s.Step != 0 && s.Step != 1 {
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(s.Step))
	}
	return sb.String()
}

// bounds resolves a slice against a dimension of length n, following Python
// slice semantics for positive steps.
func (s Selection) bounds(n int) (start, stop, step int, err error) {
	step = s.Step
	if step == 0 {
		step = 1
	}
	if step < 0 {
		return 0, 0, 0, fmt.Errorf("indexer: negative step %d is not supported", step)
	}

	start, stop = 0, n
	if s.Start != nil {
		start = clamp(*s.Start, n)
	}
	if s.Stop != nil {
		stop = clamp(*s.Stop, n)
	}
	if stop < start {
		stop = start
	}
	return start, stop, step, nil
}

func clamp(v, n int) int {
	if v < 0 {
		v += n
		if v < 0 {
			v = 0
		}
	}
	if v > n {
		v = n
	}
	return v
}

// Parse parses a comma separated selection such as "3:7,::2,5".
// An empty string selects everything.
func Parse(s string) ([]Selection, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	sels := make([]Selection, 0, len(parts))
	for _, part := range parts {
		sel, err := parseOne(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("indexer: parsing %q: %w", part, err)
		}
		sels = append(sels, sel)
	}
	return sels, nil
}

func parseOne(s string) (Selection, error) {
	if !strings.Contains(s, ":") {
		i, err := strconv.Atoi(s)
		if err != nil {
			return Selection{}, err
		}
		return Index(i), nil
	}

	fields := strings.Split(s, ":")
	if len(fields) > 3 {
		return Selection{}, fmt.Errorf("too many colons")
	}
	var sel Selection
	for i, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		v, err := strconv.Atoi(f)
		if err != nil {
			return Selection{}, err
		}
		switch i {
		case 0:
			sel.Start = &v
		case 1:
			sel.Stop = &v
		case 2:
			if v <= 0 {
				return Selection{}, fmt.Errorf("step must be positive, got %d", v)
			}
			sel.Step = v
		}
	}
	return sel, nil
}
