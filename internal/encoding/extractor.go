package encoding

import (
	"context"
	"image"
	"log"
)

// Embedder computes a deep face embedding for a crop. Implementations may
// be unavailable at startup or fail per call; both are tolerated by the
// extractor, which falls back to feature-based encoding.
type Embedder interface {
	Embed(ctx context.Context, crop image.Image) ([]float32, error)
}

// Extractor produces encodings from face crops, preferring the embedding
// service and degrading to the local feature vector.
type Extractor struct {
	embedder Embedder
}

// NewExtractor creates an extractor. A nil embedder disables the
// embedding path entirely.
func NewExtractor(embedder Embedder) *Extractor {
	return &Extractor{embedder: embedder}
}

// HasEmbedder reports whether the embedding path is configured.
func (e *Extractor) HasEmbedder() bool {
	return e.embedder != nil
}

// Extract encodes a face crop. It returns ErrInvalidCrop for empty input
// and ErrEncodingUnavailable when neither path produced data. The report
// is non-nil only for feature-based results.
func (e *Extractor) Extract(ctx context.Context, crop image.Image) (Encoding, *FeatureReport, error) {
	if crop == nil || crop.Bounds().Dx() <= 0 || crop.Bounds().Dy() <= 0 {
		return Encoding{}, nil, ErrInvalidCrop
	}

	if e.embedder != nil {
		vector, err := e.embedder.Embed(ctx, crop)
		if err == nil && len(vector) > 0 {
			return Encoding{Vector: vector, Method: MethodEmbedding}, nil, nil
		}
		if err != nil {
			// Not fatal: the feature path still applies.
			log.Printf("embedding extraction failed, using feature fallback: %v", err)
		}
	}

	enc, report := FeatureEncoding(crop)
	if report.AllDegraded() {
		return Encoding{}, &report, ErrEncodingUnavailable
	}
	return enc, &report, nil
}

// ExtractFallback encodes a crop with the feature path only, bypassing
// the embedding service. Used when a stored identity is feature-based and
// a live sample must be re-derived for a like-for-like comparison.
func (e *Extractor) ExtractFallback(crop image.Image) (Encoding, *FeatureReport, error) {
	if crop == nil || crop.Bounds().Dx() <= 0 || crop.Bounds().Dy() <= 0 {
		return Encoding{}, nil, ErrInvalidCrop
	}

	enc, report := FeatureEncoding(crop)
	if report.AllDegraded() {
		return Encoding{}, &report, ErrEncodingUnavailable
	}
	return enc, &report, nil
}
