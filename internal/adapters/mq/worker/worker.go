// Package worker evaluates queued sessions in the background.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/nameprop/internal/adapters/mq/queue"
	"github.com/okian/nameprop/internal/domain/experiment"
	"github.com/okian/nameprop/internal/domain/model"
	"github.com/okian/nameprop/pkg/logger"
	"github.com/okian/nameprop/pkg/metrics"
)

// Job is what workers read off the queue.
type Job = queue.Job

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Loader reads the inputs of a session. Delete releases them once the job
// is done with, whatever its outcome.
type Loader interface {
	Load(ctx context.Context, video string) (model.Session, error)
	Delete(ctx context.Context, video string)
}

// Evaluator runs the pipelines on a session and scores them.
type Evaluator interface {
	Evaluate(ctx context.Context, sess model.Session) ([]experiment.Score, error)
}

// Recorder accumulates session scores, at most once per video.
type Recorder interface {
	Record(ctx context.Context, video string, scores []experiment.Score) error
}

// InMemoryWorker evaluates jobs one at a time.
type InMemoryWorker struct {
	queue     Queue
	loader    Loader
	evaluator Evaluator
	recorder  Recorder
	name      string
	logger    logger.Logger

	active    *atomic.Int64
	processed *atomic.Int64
	failed    *atomic.Int64
	done      chan struct{}
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(q Queue, l Loader, e Evaluator, r Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     q,
		loader:    l,
		evaluator: e,
		recorder:  r,
		name:      "worker",
		logger:    logger.Get().Named("worker"),
		active:    new(atomic.Int64),
		processed: new(atomic.Int64),
		failed:    new(atomic.Int64),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With(logger.String("worker", w.name))
	return w
}

// Run processes jobs until the queue is drained or ctx is canceled.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.failed.Add(1)
				w.logger.Error(ctx, "evaluation failed",
					logger.String("job", job.ID),
					logger.String("video", job.Video),
					logger.Error(err),
				)
			}
		}
	}
}

// Done is closed once Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, job Job) error {
	metrics.UpdateWorkerActiveCount(int(w.active.Add(1)))
	start := time.Now()
	defer func() {
		metrics.UpdateWorkerActiveCount(int(w.active.Add(-1)))
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()
	// recorded or failed, the inputs are not read again
	defer w.loader.Delete(ctx, job.Video)

	sess, err := w.loader.Load(ctx, job.Video)
	if err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "load_error")
		return fmt.Errorf("load %s: %w", job.Video, err)
	}

	evalStart := time.Now()
	scores, err := w.evaluator.Evaluate(ctx, sess)
	metrics.RecordEvaluationLatency(float64(time.Since(evalStart).Milliseconds()))
	if err != nil {
		metrics.RecordEvaluationError()
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "evaluation_error")
		return fmt.Errorf("evaluate %s: %w", job.Video, err)
	}

	if err := w.recorder.Record(ctx, job.Video, scores); err != nil {
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "record_error")
		return fmt.Errorf("record %s: %w", job.Video, err)
	}
	w.processed.Add(1)
	w.logger.Debug(ctx, "session evaluated",
		logger.String("job", job.ID),
		logger.String("video", job.Video),
		logger.Int("scores", len(scores)),
		logger.Duration("queued", start.Sub(job.Submitted)),
	)
	return nil
}

// Pool manages multiple workers sharing one queue.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue
	count   int
	logger  logger.Logger

	active    atomic.Int64
	processed atomic.Int64
	failed    atomic.Int64

	cancel context.CancelFunc
	once   sync.Once
}

// NewPool creates a worker pool; by default it runs one worker per CPU.
func NewPool(q Queue, l Loader, e Evaluator, r Recorder, opts ...PoolOption) *Pool {
	p := &Pool{
		queue:  q,
		count:  runtime.NumCPU(),
		logger: logger.Get().Named("worker-pool"),
	}
	for _, opt := range opts {
		opt(p)
	}

	p.workers = make([]*InMemoryWorker, p.count)
	for i := range p.workers {
		w := NewInMemoryWorker(q, l, e, r,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(p.logger),
		)
		w.active, w.processed, w.failed = &p.active, &p.processed, &p.failed
		p.workers[i] = w
	}

	metrics.UpdateWorkerCount(p.count)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Start starts all workers. They stop when ctx is canceled or Shutdown
// completes.
func (p *Pool) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", p.count))
}

// Processed returns how many jobs were evaluated successfully.
func (p *Pool) Processed() int64 { return p.processed.Load() }

// Failed returns how many jobs could not be loaded, evaluated or recorded.
func (p *Pool) Failed() int64 { return p.failed.Load() }

// Size returns the number of workers.
func (p *Pool) Size() int { return p.count }

// Shutdown closes the queue and waits for the workers to drain it. When ctx
// expires first, the remaining jobs are abandoned.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.once.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}
		if p.cancel == nil {
			return
		}
		for i, w := range p.workers {
			select {
			case <-w.Done():
			case <-ctx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("shutdown: %w", ctx.Err())
			}
			if err != nil {
				break
			}
		}
		p.cancel()
	})
	return err
}
