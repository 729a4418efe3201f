package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/nameprop/internal/adapters/mq/queue"
	"github.com/okian/nameprop/internal/domain/annotation"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/timeline"
	"github.com/okian/nameprop/pkg/logger"
)

const maxBodyBytes = 32 << 20

// SessionsHandler accepts sessions for evaluation.
type SessionsHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewSessionsHandler creates a new sessions handler.
func NewSessionsHandler(deps Dependencies) *SessionsHandler {
	return &SessionsHandler{deps: deps, logger: logger.Get().Named("api")}
}

// segmentRequest is a [start, end) range in seconds.
type segmentRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

type trackRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Label string  `json:"label"`
}

// sessionRequest mirrors the OpenAPI schema for POST /sessions.
// Diarization labels are cluster ids; they are anonymized before tagging.
type sessionRequest struct {
	Video          string           `json:"video"`
	Annotated      []segmentRequest `json:"annotated"`
	Standard       []segmentRequest `json:"standard,omitempty"`
	Reference      []trackRequest   `json:"reference"`
	Diarization    []trackRequest   `json:"diarization"`
	Identification []trackRequest   `json:"identification,omitempty"`
	Overlaid       []trackRequest   `json:"overlaid"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
	JobID     string `json:"job_id,omitempty"`
}

func (s sessionRequest) session() (model.Session, error) {
	if strings.TrimSpace(s.Video) == "" {
		return model.Session{}, errors.New("missing video")
	}
	if len(s.Annotated) == 0 {
		return model.Session{}, errors.New("missing annotated region")
	}

	sess := model.Session{Video: s.Video}
	var err error
	if sess.Annotated, err = toTimeline("annotated", s.Annotated); err != nil {
		return model.Session{}, err
	}
	if sess.Standard, err = toTimeline("standard", s.Standard); err != nil {
		return model.Session{}, err
	}
	layers := []struct {
		name   string
		tracks []trackRequest
		dst    *annotation.Annotation
	}{
		{"reference", s.Reference, &sess.Reference},
		{"diarization", s.Diarization, &sess.Diarization},
		{"identification", s.Identification, &sess.Identification},
		{"overlaid", s.Overlaid, &sess.Overlaid},
	}
	for _, l := range layers {
		if *l.dst, err = toAnnotation(l.name, l.tracks); err != nil {
			return model.Session{}, err
		}
	}
	return sess, nil
}

func toTimeline(field string, in []segmentRequest) (timeline.Timeline, error) {
	segs := make([]timeline.Segment, 0, len(in))
	for i, r := range in {
		s, err := timeline.NewSegment(r.Start, r.End)
		if err != nil {
			return timeline.Timeline{}, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		segs = append(segs, s)
	}
	return timeline.New(segs...), nil
}

func toAnnotation(field string, in []trackRequest) (annotation.Annotation, error) {
	tracks := make([]annotation.Track, 0, len(in))
	for i, r := range in {
		s, err := timeline.NewSegment(r.Start, r.End)
		if err != nil {
			return annotation.Annotation{}, fmt.Errorf("%s[%d]: %w", field, i, err)
		}
		if strings.TrimSpace(r.Label) == "" {
			return annotation.Annotation{}, fmt.Errorf("%s[%d]: %w", field, i, annotation.ErrMissingLabel)
		}
		tracks = append(tracks, annotation.Track{Segment: s, Label: annotation.Known(r.Label)})
	}
	return annotation.New(tracks...)
}

// HandlePostSession handles POST /sessions requests.
func (h *SessionsHandler) HandlePostSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var req sessionRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	sess, err := req.session()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}

	if h.deps.SeenAndRecord(ctx, sess.Video) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}

	job, err := h.deps.Submit(ctx, sess)
	if err != nil {
		h.deps.Unrecord(ctx, sess.Video)
		switch {
		case errors.Is(err, queue.ErrFull):
			writeError(w, http.StatusTooManyRequests, "backpressure", fmt.Errorf("%w: %w", ErrBackpressure, err))
		case errors.Is(err, queue.ErrClosed):
			writeError(w, http.StatusServiceUnavailable, "unavailable", fmt.Errorf("%w: %w", ErrUnavailable, err))
		default:
			h.logger.Error(ctx, "submit failed", logger.String("video", sess.Video), logger.Error(err))
			writeError(w, http.StatusInternalServerError, "internal_error", err)
		}
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", JobID: job.ID})
}
