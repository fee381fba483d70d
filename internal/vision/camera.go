// Package vision provides access to the external frame source and face
// locator services. The engine consumes the interfaces defined here;
// tests substitute in-memory fakes.
package vision

import (
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	_ "golang.org/x/image/bmp"
)

// FrameSource captures single frames from the camera device or service.
type FrameSource interface {
	// Capture returns the next frame, or nil when the device failed.
	// Hardware failures are silent: callers treat nil as "no frame".
	Capture(ctx context.Context) image.Image
}

// HTTPCamera fetches snapshots from a camera service over HTTP.
type HTTPCamera struct {
	baseURL string
	client  *http.Client
}

// NewHTTPCamera creates a camera client for the given snapshot service.
func NewHTTPCamera(baseURL string) *HTTPCamera {
	return &HTTPCamera{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Capture fetches and decodes one snapshot. Any failure returns nil.
func (c *HTTPCamera) Capture(ctx context.Context) image.Image {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/snapshot", nil)
	if err != nil {
		return nil
	}

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("camera capture failed: %v", err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("camera returned status %d", resp.StatusCode)
		return nil
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		log.Printf("camera frame decode failed: %v", err)
		return nil
	}
	return img
}

// Lease serializes access to the single shared frame source. Only one
// in-flight capture may be active at a time; concurrent enrollment and
// verification workflows acquire the lease per capture rather than
// holding an ambient camera handle.
type Lease struct {
	mu     sync.Mutex
	source FrameSource
}

// NewLease wraps a frame source in a capture lease.
func NewLease(source FrameSource) *Lease {
	return &Lease{source: source}
}

// Capture acquires the lease, captures one frame, and releases.
func (l *Lease) Capture(ctx context.Context) image.Image {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.source == nil {
		return nil
	}
	return l.source.Capture(ctx)
}

// Available reports whether a frame can currently be captured.
func (l *Lease) Available(ctx context.Context) bool {
	return l.Capture(ctx) != nil
}
