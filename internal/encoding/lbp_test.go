package encoding

import (
	"image"
	"math"
	"testing"
)

func grayImage(width, height int, value uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for i := range img.Pix {
		img.Pix[i] = value
	}
	return img
}

func grayGradient(width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Pix[y*img.Stride+x] = uint8((x + y) * 255 / (width + height))
		}
	}
	return img
}

func histogramSum(hist []float32) float64 {
	var sum float64
	for _, v := range hist {
		sum += float64(v)
	}
	return sum
}

func TestTextureHistogramUniform(t *testing.T) {
	// On a flat image every sampled neighbor equals the center, so all 16
	// bits are set and every code wraps to bin 255.
	hist := TextureHistogram(grayImage(20, 20, 128), LBPRadius, LBPPoints)

	if len(hist) != LBPBins {
		t.Fatalf("expected %d bins, got %d", LBPBins, len(hist))
	}
	if math.Abs(float64(hist[255])-1) > 1e-6 {
		t.Errorf("expected all mass in bin 255, got %f", hist[255])
	}
}

func TestTextureHistogramNormalized(t *testing.T) {
	hist := TextureHistogram(grayGradient(32, 32), LBPRadius, LBPPoints)

	if sum := histogramSum(hist); math.Abs(sum-1) > 1e-4 {
		t.Errorf("histogram sum = %f; want 1", sum)
	}
}

func TestTextureHistogramDeterministic(t *testing.T) {
	img := grayGradient(32, 32)

	first := TextureHistogram(img, LBPRadius, LBPPoints)
	second := TextureHistogram(img, LBPRadius, LBPPoints)

	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("bin %d differs between runs: %f vs %f", i, first[i], second[i])
		}
	}
}

func TestTextureHistogramDegenerate(t *testing.T) {
	tests := []struct {
		name string
		img  *image.Gray
	}{
		{"nil image", nil},
		{"empty image", image.NewGray(image.Rect(0, 0, 0, 0))},
		{"no interior pixels", grayImage(4, 4, 10)},
		{"single row", grayImage(20, 1, 10)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			hist := TextureHistogram(tc.img, LBPRadius, LBPPoints)
			if len(hist) != LBPBins {
				t.Fatalf("expected %d bins, got %d", LBPBins, len(hist))
			}
			if sum := histogramSum(hist); sum != 0 {
				t.Errorf("degenerate input should yield a zero vector, sum = %f", sum)
			}
		})
	}
}
