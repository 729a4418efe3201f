package tagging

import "github.com/okian/nameprop/internal/domain/cost"

// Option configures an AssignmentTagger.
type Option func(*AssignmentTagger)

// WithCost sets the cost matrix builder.
func WithCost(f cost.Func) Option {
	return func(t *AssignmentTagger) {
		if f != nil {
			t.cost = f
		}
	}
}

// WithMapper sets the strategy turning a cost matrix into a mapping.
func WithMapper(m Mapper) Option {
	return func(t *AssignmentTagger) {
		if m != nil {
			t.mapper = m
		}
	}
}
