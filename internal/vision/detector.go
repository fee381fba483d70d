package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

// Box is a detected face bounding box in pixel coordinates.
type Box struct {
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	Confidence float64 `json:"confidence"`
}

// MeetsMinSize reports whether both dimensions reach the minimum.
func (b Box) MeetsMinSize(min int) bool {
	return b.Width >= min && b.Height >= min
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Locator finds face bounding boxes in a frame. No ordering is
// guaranteed beyond "first is usable".
type Locator interface {
	Detect(ctx context.Context, frame image.Image) ([]Box, error)
}

// detectionResponse represents the detector service response.
type detectionResponse struct {
	FacesCount int             `json:"faces_count"`
	Faces      []faceDetection `json:"faces"`
}

type faceDetection struct {
	BBox     []float64 `json:"bbox"` // [x1, y1, x2, y2]
	DetScore float64   `json:"det_score"`
}

// RemoteLocator posts frames to an HTTP face-detection service.
type RemoteLocator struct {
	baseURL string
	client  *http.Client
}

// NewRemoteLocator creates a detector client.
func NewRemoteLocator(baseURL string) *RemoteLocator {
	return &RemoteLocator{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Detect uploads the frame as JPEG and parses the returned bounding
// boxes. Corner coordinates from the service are converted to x/y/w/h
// and clamped to the frame.
func (d *RemoteLocator) Detect(ctx context.Context, frame image.Image) ([]Box, error) {
	var imgBuf bytes.Buffer
	if err := jpeg.Encode(&imgBuf, frame, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode frame: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "frame.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imgBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write frame data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/detect", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(body))
	}

	var detResp detectionResponse
	if err := json.Unmarshal(body, &detResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	bounds := frame.Bounds()
	boxes := make([]Box, 0, len(detResp.Faces))
	for _, face := range detResp.Faces {
		if len(face.BBox) != 4 {
			continue
		}
		box := cornerToBox(face.BBox, bounds.Dx(), bounds.Dy())
		box.Confidence = face.DetScore
		if box.Width > 0 && box.Height > 0 {
			boxes = append(boxes, box)
		}
	}
	return boxes, nil
}

// cornerToBox converts [x1, y1, x2, y2] corner coordinates to a Box,
// clamping to the frame dimensions.
func cornerToBox(bbox []float64, width, height int) Box {
	x1 := clamp(int(bbox[0]), 0, width)
	y1 := clamp(int(bbox[1]), 0, height)
	x2 := clamp(int(bbox[2]), 0, width)
	y2 := clamp(int(bbox[3]), 0, height)
	return Box{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ChainLocator tries locators in order and returns the first non-empty
// result. It mirrors a primary detector with a cascade fallback: a
// primary error is not fatal while a later locator can still answer.
type ChainLocator struct {
	locators []Locator
}

// NewChainLocator builds a chain from the given locators, skipping nils.
func NewChainLocator(locators ...Locator) *ChainLocator {
	chain := &ChainLocator{}
	for _, l := range locators {
		if l != nil {
			chain.locators = append(chain.locators, l)
		}
	}
	return chain
}

// Detect runs the chain. It returns the last error only when every
// locator failed and none produced boxes.
func (c *ChainLocator) Detect(ctx context.Context, frame image.Image) ([]Box, error) {
	var lastErr error
	for _, locator := range c.locators {
		boxes, err := locator.Detect(ctx, frame)
		if err != nil {
			lastErr = err
			continue
		}
		if len(boxes) > 0 {
			return boxes, nil
		}
	}
	return nil, lastErr
}

// Crop extracts the face region from a frame, clamped to frame bounds.
// Returns nil when the clamped region is empty.
func Crop(frame image.Image, box Box) image.Image {
	region := box.Rect().Intersect(frame.Bounds())
	if region.Empty() {
		return nil
	}

	type subImager interface {
		SubImage(r image.Rectangle) image.Image
	}
	if si, ok := frame.(subImager); ok {
		return si.SubImage(region)
	}

	// Fallback copy for image types without SubImage.
	out := image.NewRGBA(image.Rect(0, 0, region.Dx(), region.Dy()))
	for y := 0; y < region.Dy(); y++ {
		for x := 0; x < region.Dx(); x++ {
			out.Set(x, y, frame.At(region.Min.X+x, region.Min.Y+y))
		}
	}
	return out
}
