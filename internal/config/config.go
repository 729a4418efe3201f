// Package config defines service configuration and its loading.
package config

import (
	"fmt"
	"runtime"

	"github.com/okian/nameprop/internal/domain/propagation"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of evaluation workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize bounds how many evaluated videos are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxResultsLimit caps GET /results?limit.
	MaxResultsLimit int `koanf:"max_results_limit"`

	// Anchors are the speakers excluded by the no_anchor conditions.
	Anchors []string `koanf:"anchors"`

	// Pipelines lists the propagation pipelines to evaluate, by name.
	Pipelines []string `koanf:"pipelines"`

	// StandardCondition also scores sessions within their standard region.
	StandardCondition bool `koanf:"standard_condition"`

	// Oracles adds the perfect and perfect+M1 reference rows.
	Oracles bool `koanf:"oracles"`
}

// New creates a Config holding the defaults.
func New() *Config {
	pipelines := make([]string, 0, len(propagation.All()))
	for _, p := range propagation.All() {
		pipelines = append(pipelines, p.String())
	}
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		Addr:            ":9080",
		QueueSize:       10_000,
		WorkerCount:     runtime.NumCPU(),
		DedupeSize:      100_000,
		MaxResultsLimit: 100,
		Pipelines:       pipelines,
	}
}

// PipelineSet parses Pipelines.
func (c *Config) PipelineSet() ([]propagation.Pipeline, error) {
	out := make([]propagation.Pipeline, 0, len(c.Pipelines))
	for _, name := range c.Pipelines {
		p, err := propagation.ParsePipeline(name)
		if err != nil {
			return nil, fmt.Errorf("pipelines: %w: %w", ErrInvalidConfig, err)
		}
		out = append(out, p)
	}
	return out, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("addr must not be empty: %w", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("queue_size must be positive: %w", ErrInvalidConfig)
	case c.WorkerCount <= 0:
		return fmt.Errorf("worker_count must be positive: %w", ErrInvalidConfig)
	case c.MaxResultsLimit <= 0:
		return fmt.Errorf("max_results_limit must be positive: %w", ErrInvalidConfig)
	}
	_, err := c.PipelineSet()
	return err
}
