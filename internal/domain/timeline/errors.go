package timeline

import "errors"

// Sentinel kinds for timeline errors.
var (
	ErrInvalidSegment = errors.New("invalid segment")
)
