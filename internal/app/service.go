// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/okian/nameprop/internal/adapters/mq/queue"
	"github.com/okian/nameprop/internal/adapters/mq/worker"
	"github.com/okian/nameprop/internal/adapters/repository"
	"github.com/okian/nameprop/internal/domain/dedupe"
	"github.com/okian/nameprop/internal/domain/experiment"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/internal/domain/propagation"
	"github.com/okian/nameprop/internal/domain/types"
	"github.com/okian/nameprop/pkg/logger"
	"github.com/okian/nameprop/pkg/metrics"
)

const (
	defaultQueueSize  = 10_000
	defaultDedupeSize = 100_000
)

// Service accepts sessions, evaluates them in the background and serves the
// accumulated results.
type Service struct {
	mu sync.RWMutex

	runID    string
	sessions *repository.SessionStore
	results  *repository.ResultStore
	deduper  dedupe.Deduper
	jobs     *queue.InMemoryQueue
	pool     *worker.Pool
	runner   *experiment.Runner

	workerCount int
	queueSize   int
	dedupeSize  int
	anchors     []string
	pipelines   []propagation.Pipeline
	standard    bool
	oracles     bool

	started   bool
	startedAt time.Time
	failed    int64 // failures of pools already stopped
	cancel    context.CancelFunc

	logger logger.Logger
}

// New constructs a Service. Results can be read right away; submissions are
// accepted once Start is called.
func New(opts ...Option) *Service {
	s := &Service{
		runID:       uuid.NewString(),
		workerCount: runtime.NumCPU(),
		queueSize:   defaultQueueSize,
		dedupeSize:  defaultDedupeSize,
		pipelines:   propagation.All(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.sessions = repository.NewSessionStore()
	s.results = repository.NewResultStore()
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.runner = experiment.NewRunner(
		experiment.WithPipelines(s.pipelines...),
		experiment.WithAnchors(s.anchors...),
		experiment.WithStandardCondition(s.standard),
		experiment.WithOracles(s.oracles),
	)
	return s
}

// Start creates the queue and starts the worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting evaluation service", logger.String("run_id", s.runID))

	s.jobs = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.jobs, s.sessions, s.runner, s.results,
		worker.WithWorkerCount(s.workerCount),
		worker.WithPoolLogger(s.logger.Named("worker")),
	)
	// workers outlive the start request
	poolCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.pool.Start(poolCtx)

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "evaluation service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Any("pipelines", s.runner.Pipelines()),
	)
	return nil
}

// Stop stops accepting sessions and waits for queued ones to be evaluated,
// or for ctx to expire.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping evaluation service", logger.Int("queued", s.jobs.Len(ctx)))

	err := s.pool.Shutdown(ctx)
	s.cancel()
	s.started = false
	s.failed += s.pool.Failed()
	if err != nil {
		s.logger.Warn(ctx, "evaluation service stopped before draining", logger.Error(err))
		return fmt.Errorf("stop: %w", err)
	}
	s.logger.Info(ctx, "evaluation service stopped", logger.Int64("evaluated", s.pool.Processed()))
	return nil
}

// SeenAndRecord reports whether video was already submitted, recording it
// when it was not. The deduper is bounded, so a video it has evicted is still
// seen while its session is pending or once its scores are accumulated.
// Pending is checked first: workers record before releasing a session.
func (s *Service) SeenAndRecord(ctx context.Context, video string) bool {
	seen := s.deduper.SeenAndRecord(ctx, video) ||
		s.sessions.Has(ctx, video) ||
		s.results.Recorded(ctx, video)
	if seen {
		metrics.RecordSessionDuplicate()
	}
	return seen
}

// Unrecord forgets video so it can be submitted again.
func (s *Service) Unrecord(ctx context.Context, video string) {
	s.deduper.Unrecord(ctx, video)
}

// Size returns the number of remembered videos.
func (s *Service) Size() int64 { return s.deduper.Size() }

// Submit stores sess and queues its evaluation. On failure the session is
// not kept.
func (s *Service) Submit(ctx context.Context, sess model.Session) (model.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.Job{}, fmt.Errorf("service not started: %w", queue.ErrClosed)
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return model.Job{}, err
	}
	job := model.NewJob(sess.Video)
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		s.sessions.Delete(ctx, sess.Video)
		return model.Job{}, err
	}
	metrics.RecordSessionSubmitted()
	s.logger.Debug(ctx, "session queued", logger.String("job", job.ID), logger.String("video", sess.Video))
	return job, nil
}

// Result returns the accumulated result of pipeline under condition.
func (s *Service) Result(ctx context.Context, condition, pipeline string) (types.Result, error) {
	return s.results.Get(ctx, condition, pipeline)
}

// Results lists accumulated results. With a condition the rows are ranked by
// error rate; without one every row is listed in recording order.
func (s *Service) Results(ctx context.Context, condition string, limit int) ([]types.Result, error) {
	if condition == "" {
		return s.results.List(ctx, "", limit)
	}
	return s.results.Ranking(ctx, condition, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"run_id":       s.runID,
		"started":      s.started,
		"worker_count": s.workerCount,
		"queue_size":   s.queueSize,
		"dedupe_size":  s.dedupeSize,
		"remembered":   s.deduper.Size(),
		"pending":      s.sessions.Count(ctx),
		"evaluated":    s.results.Count(ctx),
		"failed":       s.failed,
	}
	if s.started {
		stats["failed"] = s.failed + s.pool.Failed()
		stats["queue_length"] = s.jobs.Len(ctx)
		stats["uptime_seconds"] = time.Since(s.startedAt).Seconds()
	}
	return stats
}
