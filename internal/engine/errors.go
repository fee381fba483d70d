package engine

import "errors"

var (
	// ErrInvalidThreshold is returned when setting a threshold outside
	// the allowed range.
	ErrInvalidThreshold = errors.New("threshold out of range")

	// ErrResourceUnavailable is returned when the camera or another
	// required external resource cannot be used.
	ErrResourceUnavailable = errors.New("required resource unavailable")

	// ErrTimeout is returned when a workflow exceeds its time budget.
	ErrTimeout = errors.New("operation timed out")
)
