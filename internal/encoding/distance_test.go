package encoding

import (
	"math"
	"testing"
)

func featureVector(fill float32) []float32 {
	v := make([]float32, FeatureVectorLen)
	for i := range v {
		v[i] = fill
	}
	return v
}

func TestDistanceReflexive(t *testing.T) {
	tests := []struct {
		name string
		enc  Encoding
	}{
		{"embedding", Encoding{Vector: []float32{0.1, 0.5, -0.3, 0.9}, Method: MethodEmbedding}},
		{"feature-based", Encoding{Vector: featureVector(0.25), Method: MethodFeature}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if d := Distance(tc.enc, tc.enc); d != 0 {
				t.Errorf("Distance(e, e) = %f; want 0", d)
			}
		})
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Encoding{Vector: []float32{1, 2, 3}, Method: MethodEmbedding}
	b := Encoding{Vector: []float32{4, 5, 6}, Method: MethodEmbedding}

	if Distance(a, b) != Distance(b, a) {
		t.Errorf("Distance not symmetric: %f vs %f", Distance(a, b), Distance(b, a))
	}
}

func TestDistanceEuclidean(t *testing.T) {
	a := Encoding{Vector: []float32{0, 0}, Method: MethodEmbedding}
	b := Encoding{Vector: []float32{3, 4}, Method: MethodEmbedding}

	if d := Distance(a, b); math.Abs(d-5) > 1e-6 {
		t.Errorf("Distance = %f; want 5", d)
	}
}

func TestDistanceFeatureWeighting(t *testing.T) {
	// A unit difference in the texture segment must count double compared
	// to the same difference in the color segment.
	base := Encoding{Vector: featureVector(0), Method: MethodFeature}

	colorDiff := Encoding{Vector: featureVector(0), Method: MethodFeature}
	colorDiff.Vector[FeatureWeightBoundary-1] = 1

	textureDiff := Encoding{Vector: featureVector(0), Method: MethodFeature}
	textureDiff.Vector[FeatureWeightBoundary] = 1

	dColor := Distance(base, colorDiff)
	dTexture := Distance(base, textureDiff)

	if math.Abs(dColor-1) > 1e-6 {
		t.Errorf("color-segment distance = %f; want 1", dColor)
	}
	if math.Abs(dTexture-2) > 1e-6 {
		t.Errorf("texture-segment distance = %f; want 2", dTexture)
	}
}

func TestDistanceInfinity(t *testing.T) {
	valid := Encoding{Vector: []float32{1, 2}, Method: MethodEmbedding}

	tests := []struct {
		name string
		a    Encoding
		b    Encoding
	}{
		{"missing first", Encoding{}, valid},
		{"missing second", valid, Encoding{}},
		{"method mismatch", valid, Encoding{Vector: []float32{1, 2}, Method: MethodFeature}},
		{"length mismatch", valid, Encoding{Vector: []float32{1, 2, 3}, Method: MethodEmbedding}},
		{"unknown method", Encoding{Vector: []float32{1}, Method: "bogus"}, Encoding{Vector: []float32{1}, Method: "bogus"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if d := Distance(tc.a, tc.b); !math.IsInf(d, 1) {
				t.Errorf("Distance = %f; want +Inf", d)
			}
		})
	}
}
