package annotation

import "errors"

// Sentinel kinds for annotation errors.
var (
	ErrMissingLabel = errors.New("track has no label")
)
