package encoding

import (
	"image"
	"math"
)

const (
	// LBPRadius is the default sampling radius for the texture descriptor.
	LBPRadius = 2

	// LBPPoints is the default number of circle sample points.
	LBPPoints = 16

	// LBPBins is the number of histogram bins; codes wider than 8 bits
	// wrap modulo 256.
	LBPBins = 256
)

// TextureHistogram computes a local binary pattern histogram from a
// grayscale crop. For every interior pixel it samples `points` positions
// evenly spaced on the circle of radius `radius`, using nearest-pixel
// lookup, and sets bit k of the code when the sampled neighbor is at
// least as bright as the center. The per-pixel codes are reduced to a
// 256-bin histogram normalized to sum to 1.
//
// Degenerate input (nil image or one with no interior pixels) yields a
// zero vector: callers must treat an all-zero histogram as "no texture
// signal", not as an error.
func TextureHistogram(gray *image.Gray, radius, points int) []float32 {
	hist := make([]float32, LBPBins)
	if gray == nil || radius <= 0 || points <= 0 {
		return hist
	}

	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 2*radius || height <= 2*radius {
		return hist
	}

	var total float32
	for y := radius; y < height-radius; y++ {
		for x := radius; x < width-radius; x++ {
			center := gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y

			code := 0
			for p := 0; p < points; p++ {
				angle := 2 * math.Pi * float64(p) / float64(points)
				sx := int(float64(x) + float64(radius)*math.Cos(angle))
				sy := int(float64(y) - float64(radius)*math.Sin(angle))
				if sx < 0 || sx >= width || sy < 0 || sy >= height {
					continue
				}
				if gray.GrayAt(bounds.Min.X+sx, bounds.Min.Y+sy).Y >= center {
					code |= 1 << p
				}
			}

			hist[code%LBPBins]++
			total++
		}
	}

	if total > 0 {
		for i := range hist {
			hist[i] /= total
		}
	}
	return hist
}
