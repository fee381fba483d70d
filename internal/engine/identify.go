package engine

import (
	"context"
	"image"

	"github.com/veriface/veriface/internal/audit"
	"github.com/veriface/veriface/internal/constants"
	"github.com/veriface/veriface/internal/store"
	"github.com/veriface/veriface/internal/vision"
)

// IdentifyResult lists the closest enrolled identities to a live face.
type IdentifyResult struct {
	FaceFound bool          `json:"face_found"`
	Method    string        `json:"method,omitempty"`
	Matches   []store.Match `json:"matches"`
}

// Identify captures a single frame and ranks enrolled identities by
// distance to the first qualifying detection. It never accepts or
// rejects anyone; it only reports the nearest candidates.
func (e *Engine) Identify(ctx context.Context, limit int) (IdentifyResult, error) {
	if e.camera == nil {
		return IdentifyResult{}, ErrResourceUnavailable
	}
	if limit <= 0 {
		limit = constants.IdentifyLimit
	}

	result := IdentifyResult{Matches: []store.Match{}}

	frame := e.camera.Capture(ctx)
	if frame == nil {
		return result, ErrResourceUnavailable
	}

	boxes, err := e.locator.Detect(ctx, frame)
	if err != nil || len(boxes) == 0 {
		return result, nil
	}

	var crop image.Image
	for _, box := range boxes {
		if box.MeetsMinSize(e.minFaceSize) {
			crop = vision.Crop(frame, box)
			break
		}
	}
	if crop == nil {
		return result, nil
	}

	probe, _, err := e.extractor.Extract(ctx, crop)
	if err != nil {
		return result, nil
	}

	result.FaceFound = true
	result.Method = string(probe.Method)
	result.Matches = e.store.Nearest(probe, limit)

	event := audit.Event{
		Kind:    audit.KindIdentification,
		Success: len(result.Matches) > 0,
		Method:  result.Method,
	}
	if len(result.Matches) > 0 {
		event.Name = result.Matches[0].Name
		event.Distance = result.Matches[0].Distance
	}
	e.auditLog.Record(event)

	return result, nil
}
