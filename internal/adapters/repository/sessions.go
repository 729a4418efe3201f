// Package repository stores submitted sessions and accumulated results in
// memory.
package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/experiment"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/timeline"
	"github.com/okian/nameprop/pkg/metrics"
)

// SessionStore keeps submitted sessions by video until they are evaluated and
// serves them back as experiment sources.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
}

// NewSessionStore returns an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]model.Session)}
}

// Put stores sess, replacing any session of the same video.
func (s *SessionStore) Put(_ context.Context, sess model.Session) error {
	if sess.Video == "" {
		return fmt.Errorf("empty video name: %w", ErrInvalidSession)
	}
	s.mu.Lock()
	s.sessions[sess.Video] = sess
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.UpdateSessionsStored(n)
	return nil
}

// Get returns the session of video.
func (s *SessionStore) Get(_ context.Context, video string) (model.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[video]
	if !ok {
		return model.Session{}, fmt.Errorf("%s: %w", video, ErrNotFound)
	}
	return sess, nil
}

// Has reports whether a session of video is stored.
func (s *SessionStore) Has(_ context.Context, video string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sessions[video]
	return ok
}

// Load assembles the session of video from the stored layers.
func (s *SessionStore) Load(ctx context.Context, video string) (model.Session, error) {
	return s.Sources().Load(ctx, video)
}

// Delete forgets the session of video.
func (s *SessionStore) Delete(_ context.Context, video string) {
	s.mu.Lock()
	delete(s.sessions, video)
	n := len(s.sessions)
	s.mu.Unlock()
	metrics.UpdateSessionsStored(n)
}

// Count returns the number of stored sessions.
func (s *SessionStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sources exposes the store through the loader interfaces of the experiment
// package.
func (s *SessionStore) Sources() experiment.Sources {
	return experiment.Sources{
		Annotated:      s.timeline(func(m model.Session) timeline.Timeline { return m.Annotated }),
		Standard:       s.timeline(func(m model.Session) timeline.Timeline { return m.Standard }),
		Reference:      s.layer(experiment.LayerSpeaker, func(m model.Session) annotation.Annotation { return m.Reference }),
		Diarization:    s.layer(experiment.LayerSpeaker, func(m model.Session) annotation.Annotation { return m.Diarization }),
		Identification: s.layer(experiment.LayerSpeaker, func(m model.Session) annotation.Annotation { return m.Identification }),
		Overlaid:       s.layer(experiment.LayerWritten, func(m model.Session) annotation.Annotation { return m.Overlaid }),
	}
}

type timelineFunc func(ctx context.Context, video string) (timeline.Timeline, error)

func (f timelineFunc) Timeline(ctx context.Context, video string) (timeline.Timeline, error) {
	return f(ctx, video)
}

type annotationFunc func(ctx context.Context, video, layer string, multitrack bool) (annotation.Annotation, error)

func (f annotationFunc) Annotation(ctx context.Context, video, layer string, multitrack bool) (annotation.Annotation, error) {
	return f(ctx, video, layer, multitrack)
}

func (s *SessionStore) timeline(field func(model.Session) timeline.Timeline) experiment.TimelineSource {
	return timelineFunc(func(ctx context.Context, video string) (timeline.Timeline, error) {
		sess, err := s.Get(ctx, video)
		if err != nil {
			return timeline.Timeline{}, err
		}
		return field(sess), nil
	})
}

func (s *SessionStore) layer(name string, field func(model.Session) annotation.Annotation) experiment.AnnotationSource {
	return annotationFunc(func(ctx context.Context, video, layer string, multitrack bool) (annotation.Annotation, error) {
		if layer != name {
			return annotation.Annotation{}, fmt.Errorf("%s has no %q layer: %w", video, layer, ErrUnknownLayer)
		}
		sess, err := s.Get(ctx, video)
		if err != nil {
			return annotation.Annotation{}, err
		}
		a := field(sess)
		if !multitrack {
			a = a.Collapse()
		}
		return a, nil
	})
}
