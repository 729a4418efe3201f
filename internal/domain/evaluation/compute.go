package evaluation

import (
	"slices"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/timeline"
)

// Compute scores hypothesis against reference within the annotated region.
//
// The region is cut at every track boundary. On each piece, with reference
// labels G and hypothesis labels H, matching labels are correct, the rest of
// the smaller side is confusion and the surplus of either side is a miss or
// a false alarm. Each count is weighted by the piece duration.
func Compute(reference, hypothesis annotation.Annotation, annotated timeline.Timeline) Components {
	var c Components
	for _, region := range annotated.Coverage().Segments() {
		bound := timeline.New(region)
		ref := reference.Crop(bound, timeline.Intersection)
		hyp := hypothesis.Crop(bound, timeline.Intersection)

		cuts := boundaries(region, ref, hyp)
		for k := 1; k < len(cuts); k++ {
			piece := timeline.Segment{Start: cuts[k-1], End: cuts[k]}
			c = c.Add(score(active(ref, piece), active(hyp, piece), piece.Duration()))
		}
	}
	return c
}

func boundaries(region timeline.Segment, anns ...annotation.Annotation) []float64 {
	cuts := []float64{region.Start, region.End}
	for _, a := range anns {
		for _, t := range a.Tracks() {
			cuts = append(cuts, t.Segment.Start, t.Segment.End)
		}
	}
	slices.Sort(cuts)
	return slices.Compact(cuts)
}

// active returns the labels of a spanning piece; piece never straddles a
// track boundary.
func active(a annotation.Annotation, piece timeline.Segment) map[annotation.Label]struct{} {
	out := make(map[annotation.Label]struct{})
	for _, t := range a.Overlapping(piece) {
		out[t.Label] = struct{}{}
	}
	return out
}

func score(ref, hyp map[annotation.Label]struct{}, d float64) Components {
	common := 0
	for l := range ref {
		if _, ok := hyp[l]; ok {
			common++
		}
	}
	g, h := len(ref), len(hyp)
	return Components{
		Correct:    float64(common) * d,
		Confusion:  float64(min(g, h)-common) * d,
		Miss:       float64(max(0, g-h)) * d,
		FalseAlarm: float64(max(0, h-g)) * d,
	}
}
