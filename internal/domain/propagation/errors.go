package propagation

import "errors"

// Sentinel kinds for propagation errors.
var (
	ErrUnknownPipeline = errors.New("unknown pipeline")
)
