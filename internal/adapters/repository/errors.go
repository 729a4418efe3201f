package repository

import "errors"

// Sentinel kinds for repository errors.
var (
	ErrNotFound       = errors.New("session not found")
	ErrNoResult       = errors.New("no result for condition and pipeline")
	ErrInvalidLimit   = errors.New("invalid results limit")
	ErrInvalidSession = errors.New("invalid session")
	ErrUnknownLayer   = errors.New("unknown annotation layer")
	ErrDuplicateVideo = errors.New("video already recorded")
)
