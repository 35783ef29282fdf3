package utils

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Perceptus-Labs/perceptus-coach/models"
)

// LandmarkClient runs pose and face landmark detection on a remote model
// service. It implements analysis.Backend.
type LandmarkClient struct {
	URL    string
	Client *http.Client
}

func NewLandmarkClient(url string) *LandmarkClient {
	return &LandmarkClient{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Init waits for the service to report its models loaded.
func (c *LandmarkClient) Init(ctx context.Context) error {
	if c.URL == "" {
		return fmt.Errorf("landmark service URL not configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL+"/healthz", nil)
	if err != nil {
		return fmt.Errorf("failed to create health request: %w", err)
	}
	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("landmark service health: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("landmark service health %s: %s", resp.Status, string(body))
	}
	return nil
}

// Detect posts the encoded frame. A 204 or an empty body means nothing was
// found in the frame.
func (c *LandmarkClient) Detect(ctx context.Context, frame models.VideoFrame, ts time.Time) (*models.LandmarkFrame, error) {
	if len(frame.Image) == 0 {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL+"/detect", bytes.NewReader(frame.Image))
	if err != nil {
		return nil, fmt.Errorf("failed to create detect request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	req.Header.Set("X-Timestamp-Ms", strconv.FormatInt(ts.UnixMilli(), 10))

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("detect request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("detect %s: %s", resp.Status, string(body))
	}

	var out models.LandmarkFrame
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("detect decode: %w", err)
	}
	if out.Empty() {
		return nil, nil
	}
	return &out, nil
}
