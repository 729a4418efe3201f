package evaluation

import (
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/timeline"
)

// EstimatedGlobalErrorRate accumulates Components over sessions. Totals only
// grow by addition, so scoring sessions one by one gives the same statistics
// as scoring them all at once.
//
// It is not safe for concurrent use; keep one per goroutine and Merge them,
// or guard it externally.
type EstimatedGlobalErrorRate struct {
	total    Components
	sessions int
}

// NewEstimatedGlobalErrorRate returns an empty accumulator.
func NewEstimatedGlobalErrorRate() *EstimatedGlobalErrorRate {
	return &EstimatedGlobalErrorRate{}
}

// Accumulate scores one session and adds it to the totals. It returns the
// session's own components.
func (e *EstimatedGlobalErrorRate) Accumulate(reference, hypothesis annotation.Annotation, annotated timeline.Timeline) Components {
	c := Compute(reference, hypothesis, annotated)
	e.Add(c)
	return c
}

// Add adds precomputed components as one session.
func (e *EstimatedGlobalErrorRate) Add(c Components) {
	e.total = e.total.Add(c)
	e.sessions++
}

// Merge adds the totals of o.
func (e *EstimatedGlobalErrorRate) Merge(o *EstimatedGlobalErrorRate) {
	e.total = e.total.Add(o.total)
	e.sessions += o.sessions
}

// Components returns a snapshot of the totals.
func (e *EstimatedGlobalErrorRate) Components() Components { return e.total }

// Sessions returns how many sessions were accumulated.
func (e *EstimatedGlobalErrorRate) Sessions() int { return e.sessions }

func (e *EstimatedGlobalErrorRate) ErrorRate() (float64, error) { return e.total.ErrorRate() }
func (e *EstimatedGlobalErrorRate) Precision() (float64, error) { return e.total.Precision() }
func (e *EstimatedGlobalErrorRate) Recall() (float64, error)    { return e.total.Recall() }
func (e *EstimatedGlobalErrorRate) FMeasure() (float64, error)  { return e.total.FMeasure() }

// Report returns every derived statistic; reading does not reset.
func (e *EstimatedGlobalErrorRate) Report() Report { return e.total.Report() }
