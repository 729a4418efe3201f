package experiment

import (
	"context"
	"fmt"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/evaluation"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/propagation"
	"github.com/okian/nameprop/internal/domain/timeline"
)

// Oracle rows reported next to the pipelines.
const (
	OraclePerfect   = "perfect"
	OraclePerfectM1 = "perfect+M1"
)

// Score is the outcome of one pipeline under one condition for one session.
type Score struct {
	Condition  string
	Pipeline   string
	Components evaluation.Components
}

// Runner evaluates a fixed set of pipelines on sessions. It holds no state
// between sessions and is safe for concurrent use.
type Runner struct {
	pipelines []propagation.Pipeline
	anchors   []annotation.Label
	standard  bool
	oracles   bool
}

// NewRunner returns a runner evaluating every pipeline under the all and
// no_anchor conditions unless overridden by options.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{pipelines: propagation.All()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Pipelines returns the evaluated pipelines.
func (r *Runner) Pipelines() []propagation.Pipeline {
	return append([]propagation.Pipeline(nil), r.pipelines...)
}

// scope is one restriction of a session's inputs along with the conditions
// it is scored under.
type scope struct {
	reference   annotation.Annotation
	diarization annotation.Annotation
	sid         annotation.Annotation
	on          annotation.Annotation
	conditions  []condition
}

// condition is a named region the outputs of a scope are scored on.
type condition struct {
	name   string
	region timeline.Timeline
}

// scopes lists the restrictions sess is evaluated under. In the standard
// scope only the system inputs are cropped and the full reference stays the
// ground truth; the cropped scope also restricts the reference.
func (r *Runner) scopes(sess model.Session) []scope {
	scopes := []scope{{
		reference:   sess.Reference,
		diarization: sess.Diarization.Anonymize(),
		sid:         sess.Identification,
		on:          sess.Overlaid,
		conditions: []condition{
			{name: ConditionAll, region: sess.Annotated},
			{name: ConditionNoAnchor, region: WithoutAnchors(sess.Annotated, sess.Reference, r.anchors)},
		},
	}}
	if !r.standard || sess.Standard.Empty() {
		return scopes
	}

	std := sess.Standard
	diarization := sess.Diarization.Crop(std, timeline.Loose).Anonymize()
	sid := sess.Identification.Crop(std, timeline.Loose)
	on := sess.Overlaid.Crop(std, timeline.Loose)
	cropped := sess.Reference.Crop(std, timeline.Loose)
	return append(scopes,
		scope{
			reference:   sess.Reference,
			diarization: diarization,
			sid:         sid,
			on:          on,
			conditions: []condition{
				{name: ConditionStandard, region: sess.Annotated},
				{name: ConditionStandardNoAnchor, region: WithoutAnchors(sess.Annotated, sess.Reference, r.anchors)},
			},
		},
		scope{
			reference:   cropped,
			diarization: diarization,
			sid:         sid,
			on:          on,
			conditions: []condition{
				{name: ConditionStandardCroppedNoAnchor, region: WithoutAnchors(sess.Annotated, cropped, r.anchors)},
			},
		},
	)
}

// Evaluate runs every pipeline on sess and scores the outcomes.
func (r *Runner) Evaluate(ctx context.Context, sess model.Session) ([]Score, error) {
	if len(r.pipelines) == 0 && !r.oracles {
		return nil, ErrNoPipeline
	}

	var scores []Score
	for _, sc := range r.scopes(sess) {
		outputs, err := r.propagate(ctx, sc)
		if err != nil {
			return nil, fmt.Errorf("session %s: %w", sess.Video, err)
		}
		for _, cond := range sc.conditions {
			for _, out := range outputs {
				scores = append(scores, Score{
					Condition:  cond.name,
					Pipeline:   out.name,
					Components: evaluation.Compute(sc.reference, out.hypothesis, cond.region),
				})
			}
		}
	}
	return scores, nil
}

type output struct {
	name       string
	hypothesis annotation.Annotation
}

func (r *Runner) propagate(ctx context.Context, sc scope) ([]output, error) {
	outputs := make([]output, 0, len(r.pipelines)+2)
	for _, p := range r.pipelines {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hyp, err := p.Apply(sc.on, sc.diarization, sc.sid)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, output{name: p.String(), hypothesis: hyp})
	}
	if r.oracles {
		outputs = append(outputs,
			output{name: OraclePerfect, hypothesis: propagation.Perfect(sc.reference, sc.on)},
			output{name: OraclePerfectM1, hypothesis: propagation.PerfectM1(sc.reference, sc.on)},
		)
	}
	return outputs, nil
}
