package experiment

import "errors"

// Sentinel kinds for experiment errors.
var (
	ErrMissingSource = errors.New("required source not configured")
	ErrNoPipeline    = errors.New("no pipeline to evaluate")
)
