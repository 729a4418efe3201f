package experiment

import (
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/timeline"
)

// Evaluation conditions. The standard ones restrict the system inputs to the
// standard region of the video first; standard_cropped_no_anchor also
// restricts the reference.
const (
	ConditionAll                     = "all"
	ConditionNoAnchor                = "no_anchor"
	ConditionStandard                = "standard"
	ConditionStandardNoAnchor        = "standard_no_anchor"
	ConditionStandardCroppedNoAnchor = "standard_cropped_no_anchor"
)

// Conditions lists every condition name in report order.
func Conditions() []string {
	return []string{
		ConditionAll, ConditionNoAnchor,
		ConditionStandard, ConditionStandardNoAnchor, ConditionStandardCroppedNoAnchor,
	}
}

// WithoutAnchors keeps the annotated segments that overlap time where no
// anchor speaks. Anchors are show hosts, whose names are rarely written.
func WithoutAnchors(annotated timeline.Timeline, reference annotation.Annotation, anchors []annotation.Label) timeline.Timeline {
	extent, ok := annotated.Extent()
	if !ok {
		return timeline.Timeline{}
	}
	free := reference.Subset(anchors...).Timeline().Gaps(extent)
	return annotated.Crop(free, timeline.Loose)
}
