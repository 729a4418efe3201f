// Package model contains domain models passed between layers.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/timeline"
)

// Session holds everything known about one video.
type Session struct {
	Video string

	Annotated timeline.Timeline // region with reference annotation
	Standard  timeline.Timeline // optional standard evaluation region

	Reference      annotation.Annotation // ground-truth speakers
	Diarization    annotation.Annotation // anonymous speaker clusters
	Identification annotation.Annotation // optional supervised speaker identification
	Overlaid       annotation.Annotation // names written on screen
}

// Job asks the workers to evaluate one submitted session.
type Job struct {
	ID        string    // unique id, for logs and tracing
	Video     string    // session to evaluate
	Submitted time.Time // when the session was accepted
}

// NewJob returns a job for video with a fresh id.
func NewJob(video string) Job {
	return Job{
		ID:        uuid.NewString(),
		Video:     video,
		Submitted: time.Now(),
	}
}
