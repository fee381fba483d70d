package encoding

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func testImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func gradientImage(width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			v := uint8((x + y) * 255 / (width + height))
			img.Set(x, y, color.RGBA{v, v, v, 255})
		}
	}
	return img
}

func TestFeatureEncodingLayout(t *testing.T) {
	enc, report := FeatureEncoding(gradientImage(150, 150))

	if enc.Method != MethodFeature {
		t.Errorf("expected method %q, got %q", MethodFeature, enc.Method)
	}
	if len(enc.Vector) != FeatureVectorLen {
		t.Errorf("expected %d dimensions, got %d", FeatureVectorLen, len(enc.Vector))
	}
	if report.Color != SegmentOK {
		t.Errorf("expected color segment ok, got %q", report.Color)
	}
	if report.Texture != SegmentOK {
		t.Errorf("expected texture segment ok, got %q", report.Texture)
	}
	if report.Edge != SegmentOK {
		t.Errorf("expected edge segment ok, got %q", report.Edge)
	}
}

func TestFeatureEncodingDeterministic(t *testing.T) {
	img := gradientImage(120, 160)

	first, _ := FeatureEncoding(img)
	second, _ := FeatureEncoding(img)

	for i := range first.Vector {
		if first.Vector[i] != second.Vector[i] {
			t.Fatalf("dimension %d differs between runs: %f vs %f", i, first.Vector[i], second.Vector[i])
		}
	}
}

func TestColorHistogramsNormalized(t *testing.T) {
	img := resizeCrop(gradientImage(100, 100), 128)
	hist := colorHistograms(img)

	if len(hist) != ColorSegmentLen {
		t.Fatalf("expected %d values, got %d", ColorSegmentLen, len(hist))
	}

	for c := 0; c < 3; c++ {
		var sum float64
		for i := 0; i < ColorBins; i++ {
			sum += float64(hist[c*ColorBins+i])
		}
		if math.Abs(sum-1) > 1e-4 {
			t.Errorf("channel %d histogram sum = %f; want 1", c, sum)
		}
	}
}

func TestColorHistogramsSolidColor(t *testing.T) {
	// A solid red image puts all red mass in the top bin and all
	// green/blue mass in the bottom bins.
	img := resizeCrop(testImage(50, 50, color.RGBA{255, 0, 0, 255}), 128)
	hist := colorHistograms(img)

	if math.Abs(float64(hist[ColorBins-1])-1) > 1e-4 {
		t.Errorf("red top bin = %f; want 1", hist[ColorBins-1])
	}
	if math.Abs(float64(hist[ColorBins])-1) > 1e-4 {
		t.Errorf("green bottom bin = %f; want 1", hist[ColorBins])
	}
	if math.Abs(float64(hist[2*ColorBins])-1) > 1e-4 {
		t.Errorf("blue bottom bin = %f; want 1", hist[2*ColorBins])
	}
}

func TestEdgeHistogramFlatImage(t *testing.T) {
	// No gradients anywhere: every magnitude lands in the lowest bin.
	gray := grayscale(resizeCrop(testImage(64, 64, color.White), 128))
	hist := edgeHistogram(gray)

	if len(hist) != EdgeBins {
		t.Fatalf("expected %d bins, got %d", EdgeBins, len(hist))
	}
	if math.Abs(float64(hist[0])-1) > 1e-4 {
		t.Errorf("flat image edge mass in bin 0 = %f; want 1", hist[0])
	}
}

func TestEdgeHistogramTooSmall(t *testing.T) {
	gray := image.NewGray(image.Rect(0, 0, 2, 2))
	hist := edgeHistogram(gray)

	if sum := histogramSum(hist); sum != 0 {
		t.Errorf("too-small image should yield a zero histogram, sum = %f", sum)
	}
}

func TestSafeSegmentRecoversPanic(t *testing.T) {
	segment, status := safeSegment(8, func() []float32 {
		panic("histogram computation exploded")
	})

	if status != SegmentDegraded {
		t.Errorf("expected degraded status, got %q", status)
	}
	if len(segment) != 8 {
		t.Fatalf("expected zero-filled segment of length 8, got %d", len(segment))
	}
	for i, v := range segment {
		if v != 0 {
			t.Errorf("expected zero at %d, got %f", i, v)
		}
	}
}

func TestSafeSegmentEmptyVsOK(t *testing.T) {
	_, status := safeSegment(4, func() []float32 {
		return make([]float32, 4)
	})
	if status != SegmentEmpty {
		t.Errorf("all-zero computed segment should be empty, got %q", status)
	}

	_, status = safeSegment(4, func() []float32 {
		return []float32{0, 0.5, 0, 0.5}
	})
	if status != SegmentOK {
		t.Errorf("segment with signal should be ok, got %q", status)
	}
}
