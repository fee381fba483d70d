package engine

import (
	"context"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/veriface/veriface/internal/audit"
	"github.com/veriface/veriface/internal/constants"
	"github.com/veriface/veriface/internal/encoding"
	"github.com/veriface/veriface/internal/vision"
)

// VerifyResult is the outcome of a verification workflow.
type VerifyResult struct {
	Verified     bool    `json:"verified"`
	Name         string  `json:"name"`
	BestDistance float64 `json:"-"` // +Inf when no comparable candidate was seen
	Attempts     int     `json:"attempts"`
	Threshold    float64 `json:"threshold"`
	Method       string  `json:"method,omitempty"`
}

// HasDistance reports whether any candidate produced a finite distance.
func (r VerifyResult) HasDistance() bool {
	return !math.IsInf(r.BestDistance, 1)
}

// Verify runs up to attempts capture rounds against the named identity.
// Every qualifying detection in a frame is evaluated; the first
// candidate strictly below the threshold accepts immediately. Zero
// attempts means the configured default.
func (e *Engine) Verify(ctx context.Context, name string, attempts int) (VerifyResult, error) {
	identity, err := e.store.Get(name)
	if err != nil {
		return VerifyResult{}, err
	}
	if e.camera == nil {
		return VerifyResult{}, ErrResourceUnavailable
	}
	if attempts <= 0 {
		attempts = e.verifyAttempts
	}

	threshold := e.Threshold()
	result := VerifyResult{
		Name:         identity.Name,
		BestDistance: math.Inf(1),
		Threshold:    threshold,
		Method:       string(identity.Encoding.Method),
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		result.Attempts = attempt

		if err := ctx.Err(); err != nil {
			return result, err
		}

		if e.evaluateFrame(ctx, identity.Encoding, &result, threshold) {
			e.auditLog.Record(audit.Event{
				Kind:     audit.KindVerification,
				Name:     identity.Name,
				Success:  true,
				Distance: result.BestDistance,
				Method:   result.Method,
				Detail:   fmt.Sprintf("accepted on attempt %d", attempt),
			})
			result.Verified = true
			return result, nil
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(e.attemptDelay):
			}
		}
	}

	detail := fmt.Sprintf("rejected after %d attempts", attempts)
	event := audit.Event{
		Kind:    audit.KindVerification,
		Name:    identity.Name,
		Success: false,
		Method:  result.Method,
		Detail:  detail,
	}
	if result.HasDistance() {
		event.Distance = result.BestDistance
	}
	e.auditLog.Record(event)

	return result, nil
}

// QuickVerify is a single-attempt verification.
func (e *Engine) QuickVerify(ctx context.Context, name string) (VerifyResult, error) {
	return e.Verify(ctx, name, constants.QuickVerifyAttempts)
}

// evaluateFrame captures one frame and compares every qualifying
// detection against the stored encoding. It updates the best distance
// and returns true as soon as a candidate falls strictly below the
// threshold.
func (e *Engine) evaluateFrame(ctx context.Context, stored encoding.Encoding, result *VerifyResult, threshold float64) bool {
	frame := e.camera.Capture(ctx)
	if frame == nil {
		return false
	}

	boxes, err := e.locator.Detect(ctx, frame)
	if err != nil || len(boxes) == 0 {
		return false
	}

	for _, box := range boxes {
		if !box.MeetsMinSize(e.minFaceSize) {
			continue
		}

		crop := vision.Crop(frame, box)
		probe, ok := e.probeFor(ctx, stored, crop)
		if !ok {
			continue
		}

		d := encoding.Distance(stored, probe)
		if d < result.BestDistance {
			result.BestDistance = d
		}
		if d < threshold {
			return true
		}
	}
	return false
}

// probeFor extracts a probe encoding comparable to the stored one.
// When the stored identity is feature-based the crop goes through the
// fallback path directly so both sides use the same descriptor. When
// the stored identity is embedding-based and only a feature probe can
// be produced, the candidate is skipped: feature vectors cannot be
// lifted into embedding space.
func (e *Engine) probeFor(ctx context.Context, stored encoding.Encoding, crop image.Image) (encoding.Encoding, bool) {
	if stored.Method == encoding.MethodFeature {
		probe, report, err := e.extractor.ExtractFallback(crop)
		if err != nil || (report != nil && report.AllDegraded()) {
			return encoding.Encoding{}, false
		}
		return probe, true
	}

	probe, _, err := e.extractor.Extract(ctx, crop)
	if err != nil {
		return encoding.Encoding{}, false
	}
	if probe.Method != stored.Method {
		return encoding.Encoding{}, false
	}
	return probe, true
}
