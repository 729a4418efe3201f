package annotation

import (
	"fmt"
	"slices"

	"github.com/okian/nameprop/internal/domain/timeline"
)

// Track is one labeled unit of an annotation.
type Track struct {
	Segment timeline.Segment
	Label   Label
}

func compareTracks(a, b Track) int {
	switch {
	case a.Segment.Less(b.Segment):
		return -1
	case b.Segment.Less(a.Segment):
		return 1
	default:
		return a.Label.Compare(b.Label)
	}
}

// Annotation is an immutable, sorted set of tracks. A segment may appear in
// several tracks with different labels (overlapping speakers); the same
// (segment, label) pair appears at most once.
type Annotation struct {
	tracks []Track
}

// New builds an annotation. Every track must carry a label.
func New(tracks ...Track) (Annotation, error) {
	for _, t := range tracks {
		if t.Label.IsZero() {
			return Annotation{}, fmt.Errorf("track %s: %w", t.Segment, ErrMissingLabel)
		}
	}
	return build(slices.Clone(tracks)), nil
}

// MustNew is like New but panics when a track has no label.
func MustNew(tracks ...Track) Annotation {
	a, err := New(tracks...)
	if err != nil {
		panic(err)
	}
	return a
}

// build sorts and compacts tracks in place; callers hand over ownership.
func build(tracks []Track) Annotation {
	if len(tracks) == 0 {
		return Annotation{}
	}
	slices.SortFunc(tracks, compareTracks)
	return Annotation{tracks: slices.Compact(tracks)}
}

// Tracks returns a copy of the sorted tracks.
func (a Annotation) Tracks() []Track { return slices.Clone(a.tracks) }

// Len returns the number of tracks.
func (a Annotation) Len() int { return len(a.tracks) }

// Empty reports whether the annotation has no track.
func (a Annotation) Empty() bool { return len(a.tracks) == 0 }

// Labels returns the distinct labels in canonical order.
func (a Annotation) Labels() []Label {
	seen := make(map[Label]struct{}, len(a.tracks))
	out := make([]Label, 0, len(a.tracks))
	for _, t := range a.tracks {
		if _, ok := seen[t.Label]; ok {
			continue
		}
		seen[t.Label] = struct{}{}
		out = append(out, t.Label)
	}
	slices.SortFunc(out, Label.Compare)
	return out
}

// Timeline returns the labeled segments.
func (a Annotation) Timeline() timeline.Timeline {
	segs := make([]timeline.Segment, len(a.tracks))
	for i, t := range a.tracks {
		segs[i] = t.Segment
	}
	return timeline.New(segs...)
}

// LabelTimeline returns the segments carrying label l.
func (a Annotation) LabelTimeline(l Label) timeline.Timeline {
	var segs []timeline.Segment
	for _, t := range a.tracks {
		if t.Label == l {
			segs = append(segs, t.Segment)
		}
	}
	return timeline.New(segs...)
}

// Overlapping returns the tracks whose segment overlaps s with positive
// duration.
func (a Annotation) Overlapping(s timeline.Segment) []Track {
	var out []Track
	for _, t := range a.tracks {
		if t.Segment.Start >= s.End {
			break
		}
		if t.Segment.Overlaps(s) {
			out = append(out, t)
		}
	}
	return out
}

// Anonymize replaces every label with a fresh Unknown label. Tracks sharing a
// label before the call share the same placeholder after it.
func (a Annotation) Anonymize() Annotation {
	mapping := make(map[Label]Label)
	for _, l := range a.Labels() {
		mapping[l] = NewUnknown()
	}
	return a.Relabel(mapping)
}

// Relabel substitutes labels according to mapping. Labels absent from the
// mapping, or mapped to the zero label, are kept.
func (a Annotation) Relabel(mapping map[Label]Label) Annotation {
	return a.RelabelTracks(func(t Track) Label { return mapping[t.Label] })
}

// RelabelTracks calls f for every track and adopts the returned label. A zero
// label keeps the track's current one.
func (a Annotation) RelabelTracks(f func(Track) Label) Annotation {
	out := make([]Track, len(a.tracks))
	for i, t := range a.tracks {
		if to := f(t); !to.IsZero() {
			t.Label = to
		}
		out[i] = t
	}
	return build(out)
}

// Subset keeps the tracks labeled with one of labels.
func (a Annotation) Subset(labels ...Label) Annotation {
	keep := make(map[Label]struct{}, len(labels))
	for _, l := range labels {
		keep[l] = struct{}{}
	}
	var out []Track
	for _, t := range a.tracks {
		if _, ok := keep[t.Label]; ok {
			out = append(out, t)
		}
	}
	return build(out)
}

// Crop restricts the annotation to ref, keeping labels, with the same
// semantics as timeline.Timeline.Crop.
func (a Annotation) Crop(ref timeline.Timeline, mode timeline.Mode) Annotation {
	cov := ref.Coverage()
	var out []Track
	for _, t := range a.tracks {
		for _, s := range timeline.New(t.Segment).Crop(cov, mode).Segments() {
			out = append(out, Track{Segment: s, Label: t.Label})
		}
	}
	return build(out)
}

// Collapse keeps a single label per segment, the first in canonical order.
func (a Annotation) Collapse() Annotation {
	var out []Track
	for _, t := range a.tracks {
		if n := len(out); n > 0 && out[n-1].Segment == t.Segment {
			continue
		}
		out = append(out, t)
	}
	return build(out)
}
