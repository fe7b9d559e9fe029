package smoke

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// HTTPClient wraps http.Client with the service base URL and a run id that
// is sent as the request id prefix.
type HTTPClient struct {
	client  *http.Client
	baseURL string
	runID   string
}

// newHTTPClient creates a new HTTP client with timeout
func newHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		runID:   uuid.NewString(),
	}
}

// response is a fully read HTTP response.
type response struct {
	Status int
	Body   []byte
}

// Do sends method path with an optional JSON body and reads the response.
func (c *HTTPClient) Do(ctx context.Context, method, path string, body interface{}) (response, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return response{}, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return response{}, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", c.runID+"-"+uuid.NewString()[:8])

	resp, err := c.client.Do(req)
	if err != nil {
		return response{}, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return response{}, fmt.Errorf("failed to read response: %w", err)
	}
	return response{Status: resp.StatusCode, Body: data}, nil
}

// expect sends a request and fails unless the status matches. When out is
// non-nil the body is decoded into it.
func (c *HTTPClient) expect(ctx context.Context, method, path string, body interface{}, status int, out interface{}) error {
	resp, err := c.Do(ctx, method, path, body)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	if resp.Status != status {
		return fmt.Errorf("%s %s: got status %d, want %d: %s", method, path, resp.Status, status, bytes.TrimSpace(resp.Body))
	}
	if out != nil {
		if err := json.Unmarshal(resp.Body, out); err != nil {
			return fmt.Errorf("%s %s: decode body: %w", method, path, err)
		}
	}
	return nil
}
