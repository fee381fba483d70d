// Package constants provides shared constants used across the codebase.
// Centralizing these values ensures consistency and makes them easier to modify.
package constants

import "time"

// Enrollment constants
const (
	// DefaultRequiredSamples is the number of accepted face samples needed
	// to commit an identity
	DefaultRequiredSamples = 3

	// DefaultEnrollTimeout is the maximum wall-clock time an enrollment
	// may spend collecting samples
	DefaultEnrollTimeout = 30 * time.Second

	// PollInterval is the delay between frame polls while collecting samples
	PollInterval = 100 * time.Millisecond

	// SamplePause is the extra delay after an accepted sample, giving the
	// subject time to vary their pose
	SamplePause = 500 * time.Millisecond
)

// Verification constants
const (
	// DefaultVerifyAttempts is the number of attempts for full verification
	DefaultVerifyAttempts = 3

	// QuickVerifyAttempts is the number of attempts for quick verification
	QuickVerifyAttempts = 1

	// AttemptDelay is the delay between verification attempts
	AttemptDelay = 500 * time.Millisecond

	// DefaultThreshold is the default maximum distance at which a live
	// encoding is accepted as matching the enrolled identity
	DefaultThreshold = 0.55

	// MinThreshold and MaxThreshold bound runtime threshold updates
	MinThreshold = 0.1
	MaxThreshold = 1.0
)

// Face geometry constants
const (
	// MinFaceSize is the minimum bounding-box width and height in pixels
	// for a detection to become a sample
	MinFaceSize = 100

	// FeatureCanvasSize is the side length of the square canvas face crops
	// are resized to before fallback feature extraction
	FeatureCanvasSize = 128
)

// Audit log constants
const (
	// AuditRetention is the maximum number of events kept in a persisted
	// audit snapshot
	AuditRetention = 1000

	// AuditSaveInterval is the number of appended events between snapshot writes
	AuditSaveInterval = 10
)

// Identify constants
const (
	// IdentifyLimit is the number of nearest identities fetched from the
	// index when searching for a best match
	IdentifyLimit = 5
)
