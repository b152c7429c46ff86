// Package worker provides the HTTP client for the background ingestion worker.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/hooklinehq/hookline/pkg/models"
)

// DefaultTimeout bounds a single worker call. Webhook senders enforce their
// own delivery timeouts, so the relay must not hang on a slow worker.
const DefaultTimeout = 30 * time.Second

// Client posts trigger payloads to the background worker.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a worker client. An empty endpoint is allowed: the
// deployment has no worker configured and Configured reports false.
func NewClient(endpoint string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("module", "worker_client"),
	}
}

// Configured reports whether a worker endpoint is set.
func (c *Client) Configured() bool {
	return c.endpoint != ""
}

// Notify posts the full trigger list as the request body with the signed
// credential as a bearer token, and returns the worker's decoded JSON
// response without interpreting it.
func (c *Client) Notify(ctx context.Context, token string, triggers []*models.SyncTrigger) (map[string]any, error) {
	body, err := json.Marshal(triggers)
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to encode trigger payload: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &TransportError{Err: fmt.Errorf("failed to create worker request: %w", err)}
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.Error("Failed to close worker response body", "error", closeErr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Err: err}
	}

	var decoded map[string]any
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Err: err}
	}

	c.logger.Debug("Worker notified",
		"status_code", resp.StatusCode,
		"triggers", len(triggers))

	return decoded, nil
}
