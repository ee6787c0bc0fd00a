package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const requestTimeout = 10 * time.Second

// Client reads the server's JSON API and opens spectator streams
type Client struct {
	baseURL string
	// trace receives one line per request when verbose
	trace io.Writer
	api   *http.Client
	// stream has no timeout; spectator streams end when the room closes or ctx is cancelled
	stream *http.Client
}

// NewClient creates a client for the server at baseURL. Request lines are written to
// trace when it is non-nil.
func NewClient(baseURL string, trace io.Writer) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		trace:   trace,
		api:     &http.Client{Timeout: requestTimeout},
		stream:  &http.Client{},
	}
}

// APIError is an error body returned by the server, {"error": {"code", "message"}}
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// IsNotFound reports whether err is a 404 from the server
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// Get fetches path and decodes the JSON body into result
func (c *Client) Get(ctx context.Context, path string, result any) error {
	resp, err := c.send(ctx, c.api, path, "application/json")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		var envelope struct {
			Error *APIError `json:"error"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error != nil && envelope.Error.Code != "" {
			envelope.Error.StatusCode = resp.StatusCode
			return envelope.Error
		}
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if result != nil && len(body) > 0 {
		if err := json.Unmarshal(body, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// OpenStream connects to a room's spectator feed. The caller closes the body.
func (c *Client) OpenStream(ctx context.Context, room string) (io.ReadCloser, error) {
	resp, err := c.send(ctx, c.stream, "/rooms/"+url.PathEscape(room)+"/events", "text/event-stream")
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("room %q does not exist", room)
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
}

func (c *Client) send(ctx context.Context, hc *http.Client, path, accept string) (*http.Response, error) {
	target := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	if c.trace != nil {
		fmt.Fprintf(c.trace, "GET %s -> %d (%s)\n", target, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	}
	return resp, nil
}
