// Package timeline implements time segments and the interval algebra used to
// compare annotations: extent, coverage, gaps and cropping.
package timeline

import (
	"fmt"
	"math"
)

// Segment is the closed-open time range [Start, End), in seconds.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// NewSegment validates bounds and returns the segment.
func NewSegment(start, end float64) (Segment, error) {
	if math.IsNaN(start) || math.IsNaN(end) {
		return Segment{}, fmt.Errorf("segment [%v, %v): %w", start, end, ErrInvalidSegment)
	}
	if start > end {
		return Segment{}, fmt.Errorf("segment [%v, %v): start after end: %w", start, end, ErrInvalidSegment)
	}
	return Segment{Start: start, End: end}, nil
}

// MustSegment is like NewSegment but panics on invalid bounds. Meant for
// literals in tests and fixtures.
func MustSegment(start, end float64) Segment {
	s, err := NewSegment(start, end)
	if err != nil {
		panic(err)
	}
	return s
}

// Duration returns End - Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Empty reports whether the segment has zero duration.
func (s Segment) Empty() bool { return s.End <= s.Start }

// Overlaps reports whether both segments share a positive duration.
func (s Segment) Overlaps(o Segment) bool {
	return math.Max(s.Start, o.Start) < math.Min(s.End, o.End)
}

// Intersection returns the common part of both segments. The boolean is false
// when they do not overlap with positive duration.
func (s Segment) Intersection(o Segment) (Segment, bool) {
	start := math.Max(s.Start, o.Start)
	end := math.Min(s.End, o.End)
	if start >= end {
		return Segment{}, false
	}
	return Segment{Start: start, End: end}, true
}

// Contains reports whether o lies entirely within s.
func (s Segment) Contains(o Segment) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Less orders segments by start time, then by end time.
func (s Segment) Less(o Segment) bool {
	if s.Start != o.Start {
		return s.Start < o.Start
	}
	return s.End < o.End
}

func (s Segment) String() string {
	return fmt.Sprintf("[%.3f, %.3f)", s.Start, s.End)
}
