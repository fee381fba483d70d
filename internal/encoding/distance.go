package encoding

import "math"

// FeatureWeightBoundary is the first vector index of the texture segment.
// Texture and edge histograms discriminate identity better than raw color
// histograms, so dimensions at or beyond this index carry double weight.
const FeatureWeightBoundary = ColorSegmentLen

// featureWeight is the multiplier applied to texture and edge dimensions.
const featureWeight = 2.0

// Distance computes the dissimilarity between two encodings of the same
// method. It returns +Inf when either encoding is absent, when the
// methods or lengths differ, or when the arithmetic degenerates; callers
// treat +Inf as "maximally dissimilar", never as an error.
func Distance(a, b Encoding) float64 {
	if a.IsZero() || b.IsZero() {
		return math.Inf(1)
	}
	if a.Method != b.Method || len(a.Vector) != len(b.Vector) {
		return math.Inf(1)
	}

	var sum float64
	switch a.Method {
	case MethodEmbedding:
		for i := range a.Vector {
			d := float64(a.Vector[i]) - float64(b.Vector[i])
			sum += d * d
		}
	case MethodFeature:
		for i := range a.Vector {
			d := float64(a.Vector[i]) - float64(b.Vector[i])
			if i >= FeatureWeightBoundary {
				d *= featureWeight
			}
			sum += d * d
		}
	default:
		return math.Inf(1)
	}

	result := math.Sqrt(sum)
	if math.IsNaN(result) {
		return math.Inf(1)
	}
	return result
}
