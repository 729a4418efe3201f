package experiment

import (
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/propagation"
)

// Option configures a Runner.
type Option func(*Runner)

// WithPipelines sets the pipelines to evaluate, in report order.
func WithPipelines(pipelines ...propagation.Pipeline) Option {
	return func(r *Runner) {
		r.pipelines = append([]propagation.Pipeline(nil), pipelines...)
	}
}

// WithAnchors sets the names excluded by the no_anchor conditions.
func WithAnchors(names ...string) Option {
	return func(r *Runner) {
		r.anchors = r.anchors[:0]
		for _, n := range names {
			r.anchors = append(r.anchors, annotation.Known(n))
		}
	}
}

// WithStandardCondition also scores sessions restricted to their standard
// region, when they have one.
func WithStandardCondition(enabled bool) Option {
	return func(r *Runner) {
		r.standard = enabled
	}
}

// WithOracles adds the perfect and perfect+M1 rows.
func WithOracles(enabled bool) Option {
	return func(r *Runner) {
		r.oracles = enabled
	}
}
