package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/okian/nameprop/internal/domain/evaluation"
	"github.com/okian/nameprop/internal/domain/experiment"
	"github.com/okian/nameprop/internal/domain/types"
	"github.com/okian/nameprop/pkg/metrics"
)

type resultKey struct {
	condition string
	pipeline  string
}

// ResultStore owns one accumulator per (condition, pipeline). Writers are
// serialised; readers use an immutable snapshot published after each write.
type ResultStore struct {
	mu       sync.Mutex
	acc      map[resultKey]*evaluation.EstimatedGlobalErrorRate
	order    []resultKey // first-seen order, the report order
	videos   map[string]struct{}
	sessions int

	snapshot atomic.Pointer[snapshot]
}

type snapshot struct {
	results  []types.Result
	sessions int
}

// NewResultStore returns an empty store.
func NewResultStore() *ResultStore {
	s := &ResultStore{
		acc:    make(map[resultKey]*evaluation.EstimatedGlobalErrorRate),
		videos: make(map[string]struct{}),
	}
	s.snapshot.Store(&snapshot{})
	return s
}

// Record accumulates the scores of the session of video. A video is only
// accumulated once; later attempts fail with ErrDuplicateVideo.
func (s *ResultStore) Record(_ context.Context, video string, scores []experiment.Score) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.videos[video]; ok {
		return fmt.Errorf("%s: %w", video, ErrDuplicateVideo)
	}
	s.videos[video] = struct{}{}

	for _, sc := range scores {
		k := resultKey{condition: sc.Condition, pipeline: sc.Pipeline}
		acc, ok := s.acc[k]
		if !ok {
			acc = evaluation.NewEstimatedGlobalErrorRate()
			s.acc[k] = acc
			s.order = append(s.order, k)
		}
		acc.Add(sc.Components)
		rate, err := acc.ErrorRate()
		metrics.RecordScore(k.condition, k.pipeline, rate, err == nil)
	}
	s.sessions++
	s.publish()
	return nil
}

// Recorded reports whether the scores of video were accumulated.
func (s *ResultStore) Recorded(_ context.Context, video string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.videos[video]
	return ok
}

// publish rebuilds the read snapshot. Must be called with s.mu held.
func (s *ResultStore) publish() {
	results := make([]types.Result, len(s.order))
	for i, k := range s.order {
		acc := s.acc[k]
		results[i] = types.NewResult(k.condition, k.pipeline, acc.Sessions(), acc.Components())
	}
	s.snapshot.Store(&snapshot{results: results, sessions: s.sessions})
}

// Get returns the result of pipeline under condition.
func (s *ResultStore) Get(_ context.Context, condition, pipeline string) (types.Result, error) {
	for _, r := range s.snapshot.Load().results {
		if r.Condition == condition && r.Pipeline == pipeline {
			return r, nil
		}
	}
	return types.Result{}, fmt.Errorf("%s/%s: %w", condition, pipeline, ErrNoResult)
}

// List returns up to limit results in report order, restricted to condition
// unless it is empty.
func (s *ResultStore) List(_ context.Context, condition string, limit int) ([]types.Result, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	results := s.snapshot.Load().results
	out := make([]types.Result, 0, min(limit, len(results)))
	for _, r := range results {
		if len(out) == limit {
			break
		}
		if condition == "" || r.Condition == condition {
			out = append(out, r)
		}
	}
	return out, nil
}

// Ranking returns the results of condition ordered by error rate, best
// first. Undefined error rates come last; ties keep report order.
func (s *ResultStore) Ranking(ctx context.Context, condition string, limit int) ([]types.Result, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	all, _ := s.List(ctx, condition, len(s.snapshot.Load().results)+1)
	slices.SortStableFunc(all, func(a, b types.Result) int {
		switch {
		case a.ErrorRate == nil && b.ErrorRate == nil:
			return 0
		case a.ErrorRate == nil:
			return 1
		case b.ErrorRate == nil:
			return -1
		default:
			return cmp.Compare(*a.ErrorRate, *b.ErrorRate)
		}
	})
	if len(all) > limit {
		all = all[:limit]
	}
	for i := range all {
		all[i].Rank = i + 1
	}
	return all, nil
}

// Count returns the number of recorded sessions.
func (s *ResultStore) Count(_ context.Context) int {
	return s.snapshot.Load().sessions
}
