package service

import (
	"github.com/okian/nameprop/internal/domain/propagation"
	"github.com/okian/nameprop/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued evaluations.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many submitted videos are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAnchors sets the speakers excluded by the no_anchor condition.
func WithAnchors(names ...string) Option {
	return func(s *Service) {
		s.anchors = append([]string(nil), names...)
	}
}

// WithPipelines sets the evaluated pipelines.
func WithPipelines(pipelines ...propagation.Pipeline) Option {
	return func(s *Service) {
		if len(pipelines) > 0 {
			s.pipelines = append([]propagation.Pipeline(nil), pipelines...)
		}
	}
}

// WithStandardCondition also scores sessions on their standard region.
func WithStandardCondition(enabled bool) Option {
	return func(s *Service) {
		s.standard = enabled
	}
}

// WithOracles adds the perfect and perfect+M1 rows.
func WithOracles(enabled bool) Option {
	return func(s *Service) {
		s.oracles = enabled
	}
}
