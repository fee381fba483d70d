package encoding

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/veriface/veriface/internal/constants"
)

const (
	// ColorBins is the number of histogram bins per color channel.
	ColorBins = 32

	// ColorSegmentLen is the length of the color block (3 channels).
	ColorSegmentLen = 3 * ColorBins

	// EdgeBins is the number of edge-magnitude histogram bins.
	EdgeBins = 20

	// FeatureVectorLen is the total fallback vector length.
	FeatureVectorLen = ColorSegmentLen + LBPBins + EdgeBins
)

// resizeCrop scales a crop to the fixed square feature canvas.
func resizeCrop(img image.Image, size int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Over, nil)
	return dst
}

// grayscale converts an RGBA image to grayscale using the ITU-R BT.601
// luma formula.
func grayscale(img *image.RGBA) *image.Gray {
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			luma := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			gray.SetGray(x, y, color.Gray{Y: uint8(luma)})
		}
	}
	return gray
}

// colorHistograms computes a 32-bin normalized histogram for each of the
// red, green, and blue channels, concatenated into one 96-value block.
func colorHistograms(img *image.RGBA) []float32 {
	hist := make([]float32, ColorSegmentLen)
	bounds := img.Bounds()

	var total float32
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			hist[int(r>>8)*ColorBins/256]++
			hist[ColorBins+int(g>>8)*ColorBins/256]++
			hist[2*ColorBins+int(b>>8)*ColorBins/256]++
			total++
		}
	}

	// Normalize each channel histogram to sum to 1.
	if total > 0 {
		for c := 0; c < 3; c++ {
			for i := 0; i < ColorBins; i++ {
				hist[c*ColorBins+i] /= total
			}
		}
	}
	return hist
}

// edgeHistogram computes a 20-bin normalized histogram of Sobel edge
// magnitudes over the grayscale crop.
func edgeHistogram(gray *image.Gray) []float32 {
	hist := make([]float32, EdgeBins)
	bounds := gray.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width < 3 || height < 3 {
		return hist
	}

	at := func(x, y int) float64 {
		return float64(gray.GrayAt(bounds.Min.X+x, bounds.Min.Y+y).Y)
	}

	var total float32
	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			gx := at(x+1, y-1) + 2*at(x+1, y) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x-1, y) - at(x-1, y+1)
			gy := at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1) -
				at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1)

			// Clamp to the 0-255 intensity range before binning.
			m := int(math.Sqrt(gx*gx + gy*gy))
			if m > 255 {
				m = 255
			}
			hist[m*EdgeBins/256]++
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

// FeatureEncoding builds the fallback feature vector for a face crop:
// 96 color histogram values, 256 texture histogram values, and 20 edge
// histogram values. A failed block is replaced by zeros of the expected
// length so the layout stays stable; the report records which blocks
// degraded. The crop is resized to the fixed feature canvas first.
func FeatureEncoding(crop image.Image) (Encoding, FeatureReport) {
	resized := resizeCrop(crop, constants.FeatureCanvasSize)
	gray := grayscale(resized)

	vector := make([]float32, 0, FeatureVectorLen)
	var report FeatureReport

	color, colorStatus := safeSegment(ColorSegmentLen, func() []float32 {
		return colorHistograms(resized)
	})
	vector = append(vector, color...)
	report.Color = colorStatus

	texture, textureStatus := safeSegment(LBPBins, func() []float32 {
		return TextureHistogram(gray, LBPRadius, LBPPoints)
	})
	vector = append(vector, texture...)
	report.Texture = textureStatus

	edge, edgeStatus := safeSegment(EdgeBins, func() []float32 {
		return edgeHistogram(gray)
	})
	vector = append(vector, edge...)
	report.Edge = edgeStatus

	return Encoding{Vector: vector, Method: MethodFeature}, report
}

// safeSegment runs a feature block computation, replacing a panic with a
// zero-filled block of the expected length. An all-zero result that was
// computed without failure is reported as empty, not degraded.
func safeSegment(length int, compute func() []float32) (segment []float32, status SegmentStatus) {
	defer func() {
		if r := recover(); r != nil {
			segment = make([]float32, length)
			status = SegmentDegraded
		}
	}()

	segment = compute()
	if len(segment) != length {
		padded := make([]float32, length)
		copy(padded, segment)
		segment = padded
	}

	status = SegmentEmpty
	for _, v := range segment {
		if v != 0 {
			status = SegmentOK
			break
		}
	}
	return segment, status
}
