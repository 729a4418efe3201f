package loadgen

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/okian/nameprop/pkg/logger"
)

const (
	pollInterval = 200 * time.Millisecond
	resultLimit  = 100
)

// ErrWaitTimeout is returned when the service does not finish evaluating
// the submitted sessions in time.
var ErrWaitTimeout = errors.New("timed out waiting for evaluations")

// Run generates, submits and verifies one batch of sessions. It returns the
// ranking of the all condition.
func Run(ctx context.Context, cfg *Config) ([]Result, error) {
	log := logger.Get().Named("loadgen")
	stats := &Stats{StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting load run",
		logger.String("base_url", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
	)

	if err := client.Health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}
	before, err := client.Progress(ctx)
	if err != nil {
		return nil, fmt.Errorf("read stats: %w", err)
	}

	sessions := NewGenerator(cfg, "synthetic_"+uuid.NewString()[:8]).Generate(cfg.Sessions)
	stats.Generated = len(sessions)

	submitAll(ctx, cfg, client, sessions, stats)
	if stats.Accepted == 0 {
		return nil, fmt.Errorf("no session accepted (%d failed)", stats.Failed)
	}

	after, err := waitEvaluated(ctx, cfg, client, before.Done()+stats.Accepted)
	if err != nil {
		return nil, err
	}
	stats.Evaluated = after.Evaluated - before.Evaluated
	stats.EvalFailed = after.Failed - before.Failed
	if stats.EvalFailed > 0 {
		log.Warn(ctx, "some sessions failed evaluation", logger.Int("failed", stats.EvalFailed))
	}
	if stats.Evaluated == 0 {
		return nil, fmt.Errorf("no session evaluated (%d failed)", stats.EvalFailed)
	}

	rows, err := client.Results(ctx, "all", resultLimit)
	if err != nil {
		return nil, fmt.Errorf("results: %w", err)
	}
	if err := verifyRanking(rows, after.Evaluated); err != nil {
		return nil, fmt.Errorf("verify ranking: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	for _, r := range rows {
		fields := []logger.Field{logger.Int("rank", r.Rank), logger.String("pipeline", r.Pipeline)}
		if r.ErrorRate != nil {
			fields = append(fields, logger.Float64("eger", *r.ErrorRate))
		}
		log.Info(ctx, "ranking", fields...)
	}
	log.Info(ctx, "load run completed",
		logger.Int("generated", stats.Generated),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("evaluated", stats.Evaluated),
		logger.Int("evaluation_failed", stats.EvalFailed),
		logger.Duration("duration", stats.Duration),
	)
	return rows, nil
}

// waitEvaluated polls until the service is done with want sessions, counting
// failed evaluations as done.
func waitEvaluated(ctx context.Context, cfg *Config, c *Client, want int) (Progress, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.WaitTimeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	var last Progress
	for {
		p, err := c.Progress(ctx)
		if err == nil {
			last = p
			if p.Done() >= want {
				return p, nil
			}
		}
		select {
		case <-ctx.Done():
			return last, fmt.Errorf("%d of %d done: %w", last.Done(), want, ErrWaitTimeout)
		case <-ticker.C:
		}
	}
}
