package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/nameprop/internal/loadgen"
	"github.com/okian/nameprop/pkg/logger"
)

const (
	defaultSessions = 200
	defaultGuests   = 4
	defaultDuration = 600
	runTimeout      = 10 * time.Minute
)

func main() {
	cfg := &loadgen.Config{}
	flag.StringVar(&cfg.BaseURL, "url", "http://localhost:9080", "Base URL of the service")
	flag.IntVar(&cfg.Sessions, "sessions", defaultSessions, "Number of sessions to generate and submit")
	flag.IntVar(&cfg.Guests, "guests", defaultGuests, "Speakers besides the anchor in each session")
	flag.Float64Var(&cfg.Duration, "duration", defaultDuration, "Length of each session in seconds")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Number of concurrent submitters")
	flag.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "HTTP request timeout")
	flag.DurationVar(&cfg.WaitTimeout, "wait", 2*time.Minute, "How long to wait for evaluations")
	flag.Uint64Var(&cfg.Seed, "seed", uint64(time.Now().UnixNano()), "Generator seed")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if cfg.Verbose {
		_ = logger.SetLevelString("debug")
	}
	if err := run(cfg); err != nil {
		logger.Get().Error(context.Background(), "load run failed", logger.Error(err))
		os.Exit(1)
	}
}

func run(cfg *loadgen.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	_, err := loadgen.Run(ctx, cfg)
	return err
}
