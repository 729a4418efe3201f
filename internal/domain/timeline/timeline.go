package timeline

import (
	"fmt"
	"slices"
)

// Mode selects how Crop treats segments that only partially overlap the
// reference timeline.
type Mode int

const (
	// Strict keeps segments wholly contained in the reference.
	Strict Mode = iota
	// Loose keeps every segment overlapping the reference, unclipped.
	Loose
	// Intersection keeps the overlapping parts of every segment.
	Intersection
)

func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Loose:
		return "loose"
	case Intersection:
		return "intersection"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Timeline is an immutable, sorted set of segments belonging to one temporal
// extent. Members may overlap; identical segments are collapsed.
type Timeline struct {
	segments []Segment
}

// New builds a timeline from the given segments.
func New(segments ...Segment) Timeline {
	if len(segments) == 0 {
		return Timeline{}
	}
	s := slices.Clone(segments)
	slices.SortFunc(s, compare)
	return Timeline{segments: slices.Compact(s)}
}

func compare(a, b Segment) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}

// Segments returns a copy of the sorted members.
func (t Timeline) Segments() []Segment { return slices.Clone(t.segments) }

// Len returns the number of segments.
func (t Timeline) Len() int { return len(t.segments) }

// Empty reports whether the timeline has no segment.
func (t Timeline) Empty() bool { return len(t.segments) == 0 }

// Extent returns the smallest segment covering every member.
func (t Timeline) Extent() (Segment, bool) {
	if t.Empty() {
		return Segment{}, false
	}
	ext := t.segments[0]
	for _, s := range t.segments[1:] {
		if s.End > ext.End {
			ext.End = s.End
		}
	}
	return ext, true
}

// Coverage returns the union of all segments as disjoint, sorted segments.
// Zero-duration segments do not contribute.
func (t Timeline) Coverage() Timeline {
	var out []Segment
	for _, s := range t.segments {
		if s.Empty() {
			continue
		}
		if n := len(out); n > 0 && s.Start <= out[n-1].End {
			if s.End > out[n-1].End {
				out[n-1].End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return Timeline{segments: out}
}

// Duration returns the total duration covered by the timeline.
func (t Timeline) Duration() float64 {
	total := 0.0
	for _, s := range t.Coverage().segments {
		total += s.Duration()
	}
	return total
}

// Gaps returns the parts of bound not covered by any segment.
func (t Timeline) Gaps(bound Segment) Timeline {
	if bound.Empty() {
		return Timeline{}
	}
	var out []Segment
	cursor := bound.Start
	for _, s := range t.Coverage().segments {
		if s.End <= cursor {
			continue
		}
		if s.Start >= bound.End {
			break
		}
		if s.Start > cursor {
			out = append(out, Segment{Start: cursor, End: s.Start})
		}
		cursor = s.End
		if cursor >= bound.End {
			break
		}
	}
	if cursor < bound.End {
		out = append(out, Segment{Start: cursor, End: bound.End})
	}
	return Timeline{segments: out}
}

// Crop restricts the timeline to ref according to mode. An unknown mode
// leaves the timeline unchanged.
func (t Timeline) Crop(ref Timeline, mode Mode) Timeline {
	if mode < Strict || mode > Intersection {
		return t
	}
	cov := ref.Coverage()
	var out []Segment
	for _, s := range t.segments {
		out = append(out, cropSegment(s, cov, mode)...)
	}
	return New(out...)
}

// Union returns a timeline holding the members of both.
func (t Timeline) Union(o Timeline) Timeline {
	return New(append(t.Segments(), o.segments...)...)
}

// cropSegment returns what survives of s once cropped by cov, which must be a
// coverage (disjoint and sorted).
func cropSegment(s Segment, cov Timeline, mode Mode) []Segment {
	switch mode {
	case Strict:
		for _, c := range cov.segments {
			if c.Contains(s) {
				return []Segment{s}
			}
		}
		return nil
	case Loose:
		for _, c := range cov.segments {
			if c.Overlaps(s) || c.Contains(s) {
				return []Segment{s}
			}
		}
		return nil
	case Intersection:
		var out []Segment
		for _, c := range cov.segments {
			if i, ok := c.Intersection(s); ok {
				out = append(out, i)
			}
		}
		return out
	default:
		return []Segment{s}
	}
}
