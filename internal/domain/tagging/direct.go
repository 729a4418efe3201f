package tagging

import "github.com/okian/nameprop/internal/domain/annotation"

// DirectTagger is the conservative direct tagger. A target track whose label
// is Unknown adopts the label of the source tracks overlapping it, provided
// they all agree on a single known identity. Known target labels are never
// overwritten, so applying the tagger twice gives the same result as once.
type DirectTagger struct{}

// NewDirectTagger returns a conservative direct tagger.
func NewDirectTagger() DirectTagger { return DirectTagger{} }

// Tag merges source identities into target.
func (DirectTagger) Tag(source, target annotation.Annotation) annotation.Annotation {
	if source.Empty() || target.Empty() {
		return target
	}
	return target.RelabelTracks(func(t annotation.Track) annotation.Label {
		if !t.Label.IsUnknown() {
			return annotation.Label{}
		}
		var candidate annotation.Label
		for _, s := range source.Overlapping(t.Segment) {
			switch {
			case s.Label.IsUnknown(), s.Label == candidate:
			case candidate.IsZero():
				candidate = s.Label
			default:
				// ambiguous
				return annotation.Label{}
			}
		}
		return candidate
	})
}
