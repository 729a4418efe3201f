package tagging

import (
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/cost"
)

// Tagger relabels target with identities taken from source. Implementations
// are stateless and safe for concurrent use.
type Tagger interface {
	Tag(source, target annotation.Annotation) annotation.Annotation
}

// AssignmentTagger builds a cost matrix with target labels as rows and source
// labels as columns, derives a mapping from it and renames the target.
//
// Direction is up to the caller: Tag(on, sd) names diarization clusters after
// overlaid names, Tag(sd, on) would rename overlaid names after clusters.
type AssignmentTagger struct {
	cost   cost.Func
	mapper Mapper
}

// NewAssignmentTagger returns a tagger using co-occurrence cost and the
// Hungarian mapper unless overridden by options.
func NewAssignmentTagger(opts ...Option) *AssignmentTagger {
	t := &AssignmentTagger{
		cost:   cost.Cooccurrence,
		mapper: Hungarian(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewOneToOne returns the optimal one-to-one tagger: co-occurrence cost and
// Hungarian assignment.
func NewOneToOne(opts ...Option) *AssignmentTagger {
	return NewAssignmentTagger(append([]Option{WithCost(cost.Cooccurrence), WithMapper(Hungarian())}, opts...)...)
}

// NewOneToMany returns the independent best-match tagger: TF-IDF weighted
// co-occurrence and per-row argmax.
func NewOneToMany(opts ...Option) *AssignmentTagger {
	return NewAssignmentTagger(append([]Option{WithCost(cost.CoTFIDF), WithMapper(ArgMax())}, opts...)...)
}

// Mapping returns the label mapping Tag would apply to target.
func (t *AssignmentTagger) Mapping(source, target annotation.Annotation) map[annotation.Label]annotation.Label {
	if source.Empty() || target.Empty() {
		return map[annotation.Label]annotation.Label{}
	}
	return t.mapper.Map(t.cost(target, source))
}

// Tag renames target labels after their assigned source labels. Target labels
// without a positive-cost assignment are kept.
func (t *AssignmentTagger) Tag(source, target annotation.Annotation) annotation.Annotation {
	if source.Empty() || target.Empty() {
		return target
	}
	return target.Relabel(t.Mapping(source, target))
}
