// Package experiment evaluates propagation pipelines on sessions supplied by
// an external loader.
package experiment

import (
	"context"
	"fmt"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/timeline"
)

// Annotation layers.
const (
	LayerSpeaker = "speaker"
	LayerWritten = "written"
)

// TimelineSource returns a region of a video, e.g. its annotated frames.
type TimelineSource interface {
	Timeline(ctx context.Context, video string) (timeline.Timeline, error)
}

// AnnotationSource returns one layer of a video's annotation. With multitrack
// false, overlapping labels on a segment are collapsed to one.
type AnnotationSource interface {
	Annotation(ctx context.Context, video, layer string, multitrack bool) (annotation.Annotation, error)
}

// Sources bundles the loaders a session is built from. Standard and
// Identification are optional.
type Sources struct {
	Annotated      TimelineSource
	Standard       TimelineSource
	Reference      AnnotationSource
	Diarization    AnnotationSource
	Identification AnnotationSource
	Overlaid       AnnotationSource
}

// Load assembles the session of video.
func (s Sources) Load(ctx context.Context, video string) (model.Session, error) {
	if s.Annotated == nil || s.Reference == nil || s.Diarization == nil || s.Overlaid == nil {
		return model.Session{}, ErrMissingSource
	}
	sess := model.Session{Video: video}
	var err error
	if sess.Annotated, err = s.Annotated.Timeline(ctx, video); err != nil {
		return model.Session{}, fmt.Errorf("annotated region of %s: %w", video, err)
	}
	if s.Standard != nil {
		if sess.Standard, err = s.Standard.Timeline(ctx, video); err != nil {
			return model.Session{}, fmt.Errorf("standard region of %s: %w", video, err)
		}
	}
	if sess.Reference, err = s.Reference.Annotation(ctx, video, LayerSpeaker, true); err != nil {
		return model.Session{}, fmt.Errorf("reference of %s: %w", video, err)
	}
	if sess.Diarization, err = s.Diarization.Annotation(ctx, video, LayerSpeaker, true); err != nil {
		return model.Session{}, fmt.Errorf("diarization of %s: %w", video, err)
	}
	if s.Identification != nil {
		if sess.Identification, err = s.Identification.Annotation(ctx, video, LayerSpeaker, true); err != nil {
			return model.Session{}, fmt.Errorf("identification of %s: %w", video, err)
		}
	}
	if sess.Overlaid, err = s.Overlaid.Annotation(ctx, video, LayerWritten, true); err != nil {
		return model.Session{}, fmt.Errorf("overlaid names of %s: %w", video, err)
	}
	return sess, nil
}
