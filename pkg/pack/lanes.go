package pack

import (
	"cmp"
	"slices"
)

// Span is a time interval in Ma with Start >= End.
type Span struct {
	Start, End float64
}

// Overlaps reports whether two spans share any time. Spans that merely touch
// (one ends exactly where the other starts) do not overlap.
func (s Span) Overlaps(o Span) bool {
	return !(s.End >= o.Start || s.Start <= o.End)
}

// Lanes assigns a lane index to every span. Spans are processed oldest
// first (Start descending, stable for equal starts); each goes into the
// lowest-indexed lane holding no overlapping span, or opens a new lane.
// The returned slice is indexed like the input.
func Lanes(spans []Span) []int {
	lanes, _ := assign(spans)
	return lanes
}

// Order returns the indices of spans sorted by Start descending, ties kept
// in input order. It is the order in which Lanes places spans.
func Order(spans []Span) []int {
	idx := make([]int, len(spans))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		return cmp.Compare(spans[b].Start, spans[a].Start)
	})
	return idx
}

// LaneCount returns the number of lanes an assignment uses.
func LaneCount(lanes []int) int {
	n := 0
	for _, l := range lanes {
		n = max(n, l+1)
	}
	return n
}

func assign(spans []Span) ([]int, [][]Span) {
	out := make([]int, len(spans))
	var lanes [][]Span
	for _, i := range Order(spans) {
		s := spans[i]
		placed := false
		for l, occupants := range lanes {
			if !slices.ContainsFunc(occupants, s.Overlaps) {
				lanes[l] = append(occupants, s)
				out[i] = l
				placed = true
				break
			}
		}
		if !placed {
			out[i] = len(lanes)
			lanes = append(lanes, []Span{s})
		}
	}
	return out, lanes
}
