// Package engine implements the biometric workflows: enrollment,
// verification, and identification. It owns the runtime threshold and
// coordinates the camera lease, face locator, encoding extractor,
// identity store, and audit log.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/veriface/veriface/internal/audit"
	"github.com/veriface/veriface/internal/constants"
	"github.com/veriface/veriface/internal/encoding"
	"github.com/veriface/veriface/internal/store"
	"github.com/veriface/veriface/internal/vision"
)

// Engine wires the biometric components together. All exported methods
// are safe for concurrent use; the camera lease serializes frame
// captures across concurrent workflows.
type Engine struct {
	store     *store.Store
	auditLog  *audit.Log
	extractor *encoding.Extractor
	camera    *vision.Lease
	locator   vision.Locator
	jobs      *JobManager

	thresholdMu sync.RWMutex
	threshold   float64

	requiredSamples int
	verifyAttempts  int
	minFaceSize     int
	enrollTimeout   time.Duration

	// Overridable in tests; production values come from constants.
	pollInterval time.Duration
	samplePause  time.Duration
	attemptDelay time.Duration
}

// Options carries the engine dependencies and tuning.
type Options struct {
	Store     *store.Store
	AuditLog  *audit.Log
	Extractor *encoding.Extractor
	Camera    *vision.Lease
	Locator   vision.Locator

	Threshold       float64
	RequiredSamples int
	VerifyAttempts  int
	MinFaceSize     int
	EnrollTimeout   time.Duration
}

// New creates an engine. Zero tuning values fall back to defaults.
func New(opts Options) *Engine {
	e := &Engine{
		store:           opts.Store,
		auditLog:        opts.AuditLog,
		extractor:       opts.Extractor,
		camera:          opts.Camera,
		locator:         opts.Locator,
		threshold:       opts.Threshold,
		requiredSamples: opts.RequiredSamples,
		verifyAttempts:  opts.VerifyAttempts,
		minFaceSize:     opts.MinFaceSize,
		enrollTimeout:   opts.EnrollTimeout,
		jobs:            NewJobManager(),
		pollInterval:    constants.PollInterval,
		samplePause:     constants.SamplePause,
		attemptDelay:    constants.AttemptDelay,
	}

	if e.threshold == 0 {
		e.threshold = constants.DefaultThreshold
	}
	if e.requiredSamples <= 0 {
		e.requiredSamples = constants.DefaultRequiredSamples
	}
	if e.verifyAttempts <= 0 {
		e.verifyAttempts = constants.DefaultVerifyAttempts
	}
	if e.minFaceSize <= 0 {
		e.minFaceSize = constants.MinFaceSize
	}
	if e.enrollTimeout <= 0 {
		e.enrollTimeout = constants.DefaultEnrollTimeout
	}
	return e
}

// Threshold returns the current verification threshold.
func (e *Engine) Threshold() float64 {
	e.thresholdMu.RLock()
	defer e.thresholdMu.RUnlock()
	return e.threshold
}

// SetThreshold updates the verification threshold. Values outside
// [0.1, 1.0] are rejected; in-flight verifications keep the value they
// read at comparison time.
func (e *Engine) SetThreshold(value float64) error {
	if value < constants.MinThreshold || value > constants.MaxThreshold {
		return ErrInvalidThreshold
	}
	e.thresholdMu.Lock()
	e.threshold = value
	e.thresholdMu.Unlock()
	return nil
}

// Store exposes the identity store for read endpoints.
func (e *Engine) Store() *store.Store {
	return e.store
}

// AuditLog exposes the audit trail for read endpoints.
func (e *Engine) AuditLog() *audit.Log {
	return e.auditLog
}

// SystemStatus is the live health summary of the engine.
type SystemStatus struct {
	Identities        int     `json:"identities"`
	Threshold         float64 `json:"threshold"`
	EmbedderAvailable bool    `json:"embedder_available"`
	CameraAvailable   bool    `json:"camera_available"`
	AuditEvents       int     `json:"audit_events"`
	ActiveEnrollments int     `json:"active_enrollments"`
}

// Status captures a frame to probe camera availability, so it should
// not be called on a hot path.
func (e *Engine) Status(ctx context.Context) SystemStatus {
	cameraOK := false
	if e.camera != nil {
		cameraOK = e.camera.Available(ctx)
	}
	return SystemStatus{
		Identities:        e.store.Count(),
		Threshold:         e.Threshold(),
		EmbedderAvailable: e.extractor.HasEmbedder(),
		CameraAvailable:   cameraOK,
		AuditEvents:       e.auditLog.Len(),
		ActiveEnrollments: e.jobs.ActiveCount(),
	}
}

// CameraTest reports whether a frame can currently be captured.
func (e *Engine) CameraTest(ctx context.Context) bool {
	return e.camera != nil && e.camera.Available(ctx)
}
