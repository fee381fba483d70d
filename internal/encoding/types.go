// Package encoding turns face crops into numeric encodings and compares
// them. Extraction prefers an external deep-embedding service and falls
// back to a locally computed feature vector (color, texture, and edge
// histograms) when the service is absent or fails.
package encoding

import "errors"

// Method identifies how an encoding was produced. The tag is load-bearing:
// it selects the distance function and decides whether two encodings are
// directly comparable.
type Method string

const (
	// MethodEmbedding marks vectors produced by the external deep
	// face-embedding service.
	MethodEmbedding Method = "embedding"

	// MethodFeature marks fallback vectors built from color, texture,
	// and edge histograms.
	MethodFeature Method = "feature-based"
)

// Encoding is a numeric face signature tagged with its production method.
type Encoding struct {
	Vector []float32 `json:"vector"`
	Method Method    `json:"method"`
}

// IsZero reports whether the encoding carries no vector at all.
func (e Encoding) IsZero() bool {
	return len(e.Vector) == 0
}

// SegmentStatus reports how a fallback feature block was produced.
type SegmentStatus string

const (
	// SegmentOK means the block was computed and carries signal.
	SegmentOK SegmentStatus = "ok"

	// SegmentEmpty means the block was computed but came out all-zero
	// (no signal, e.g. a degenerate crop for the texture descriptor).
	SegmentEmpty SegmentStatus = "empty"

	// SegmentDegraded means the computation failed and the block was
	// zero-filled to keep the vector layout stable.
	SegmentDegraded SegmentStatus = "degraded"
)

// FeatureReport records the per-segment status of a fallback extraction,
// letting callers distinguish informative zeros from zero-filled failures.
type FeatureReport struct {
	Color   SegmentStatus `json:"color"`
	Texture SegmentStatus `json:"texture"`
	Edge    SegmentStatus `json:"edge"`
}

// AllDegraded reports whether every segment was zero-filled after a failure.
func (r FeatureReport) AllDegraded() bool {
	return r.Color == SegmentDegraded && r.Texture == SegmentDegraded && r.Edge == SegmentDegraded
}

var (
	// ErrInvalidCrop is returned when a face crop is nil or has no pixels.
	ErrInvalidCrop = errors.New("invalid face crop")

	// ErrEncodingUnavailable is returned when neither the embedding path
	// nor the fallback path produced any data.
	ErrEncodingUnavailable = errors.New("no encoding method available")
)
