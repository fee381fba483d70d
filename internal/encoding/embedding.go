package encoding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const defaultEmbeddingURL = "http://localhost:8000"

// EmbeddingClient computes deep face embeddings using the embedding server.
// It implements Embedder.
type EmbeddingClient struct {
	baseURL string
	client  *http.Client
}

// NewEmbeddingClient creates a new embedding client.
func NewEmbeddingClient(baseURL string) *EmbeddingClient {
	if baseURL == "" {
		baseURL = defaultEmbeddingURL
	}
	return &EmbeddingClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

// embeddingResponse represents the response from the embedding server.
type embeddingResponse struct {
	Dim       int       `json:"dim"`
	Embedding []float32 `json:"embedding"`
	Model     string    `json:"model"`
}

// Embed computes the embedding for a face crop. The crop is sent as a
// JPEG multipart upload; an empty embedding in the response is an error
// so callers can fall back to the feature path.
func (c *EmbeddingClient) Embed(ctx context.Context, crop image.Image) ([]float32, error) {
	var imgBuf bytes.Buffer
	if err := jpeg.Encode(&imgBuf, crop, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("failed to encode crop: %w", err)
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "face.jpg")
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(imgBuf.Bytes()); err != nil {
		return nil, fmt.Errorf("failed to write image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/embed/face", &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.client.Do(req)
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

	var embResp embeddingResponse
	if err := json.Unmarshal(body, &embResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(embResp.Embedding) == 0 {
		return nil, errors.New("empty embedding returned")
	}

	return embResp.Embedding, nil
}
