// Package client is a Go caller of the folio HTTP API, used by the CLI.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	"github.com/radityprtama/folio/internal/github"
	"github.com/radityprtama/folio/internal/heatmap"
)

// DefaultTimeout bounds a request when the context carries no deadline.
const DefaultTimeout = 10 * time.Second

// APIError is a non-200 answer from the service. Detail is the raw "error"
// value: a message string or the relayed upstream errors.
type APIError struct {
	Status int
	Detail json.RawMessage
}

func (e *APIError) Error() string {
	var msg string
	if err := json.Unmarshal(e.Detail, &msg); err == nil {
		return fmt.Sprintf("api error (status %d): %s", e.Status, msg)
	}
	if len(e.Detail) > 0 {
		return fmt.Sprintf("api error (status %d): %s", e.Status, string(e.Detail))
	}
	return fmt.Sprintf("api error (status %d)", e.Status)
}

// Client talks to one folio instance.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
}

// New creates a client for baseURL, e.g. "http://localhost:3000".
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http: &fasthttp.Client{
			Name:                "folio-cli",
			MaxIdleConnDuration: 30 * time.Second,
		},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
	}
}

// GetCount reads the visitor count without incrementing it.
func (c *Client) GetCount(ctx context.Context) (int64, error) {
	return c.count(ctx, fasthttp.MethodGet)
}

// IncrementCount records a visit and returns the new count.
func (c *Client) IncrementCount(ctx context.Context) (int64, error) {
	return c.count(ctx, fasthttp.MethodPost)
}

func (c *Client) count(ctx context.Context, method string) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := c.do(ctx, method, "/api/visitor-count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

// Calendar fetches the raw contribution calendar.
func (c *Client) Calendar(ctx context.Context) (*github.Calendar, error) {
	var cal github.Calendar
	if err := c.do(ctx, fasthttp.MethodGet, "/api/github", &cal); err != nil {
		return nil, err
	}
	return &cal, nil
}

// Heatmap fetches the server-derived display grid.
func (c *Client) Heatmap(ctx context.Context) (*heatmap.Heatmap, error) {
	var h heatmap.Heatmap
	if err := c.do(ctx, fasthttp.MethodGet, "/api/github/heatmap", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Up probes the liveness endpoint.
func (c *Client) Up(ctx context.Context) error {
	return c.do(ctx, fasthttp.MethodGet, "/up", nil)
}

func (c *Client) do(ctx context.Context, method, path string, out any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(c.baseURL + path)
	req.Header.SetMethod(method)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")
	if method == fasthttp.MethodPost {
		req.Header.SetContentType("application/json")
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		apiErr := &APIError{Status: resp.StatusCode()}
		var envelope struct {
			Error json.RawMessage `json:"error"`
		}
		if json.Unmarshal(resp.Body(), &envelope) == nil {
			apiErr.Detail = envelope.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}
