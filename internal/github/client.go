// Package github fetches a user's contribution calendar from the GitHub
// GraphQL API. Every call goes upstream; nothing is cached.
package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/radityprtama/folio/internal/config"
	"github.com/radityprtama/folio/internal/logging"
	"github.com/radityprtama/folio/internal/metrics"
)

const calendarQuery = `
query($username: String!) {
  user(login: $username) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            contributionCount
            date
          }
        }
      }
    }
  }
}`

// maxResponseBytes bounds how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// Fetcher is implemented by Client; handlers depend on it.
type Fetcher interface {
	FetchCalendar(ctx context.Context) (*Calendar, error)
}

// Client is a GraphQL client bound to one username.
type Client struct {
	httpClient *http.Client
	endpoint   string
	username   string
	timeout    time.Duration
	log        *zap.Logger
}

// NewClient builds a client from configuration. The token is attached by an
// oauth2 transport and never leaves the server.
func NewClient(cfg config.GitHubConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultGitHubTimeout
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultGitHubEndpoint
	}

	httpClient := &http.Client{}
	if cfg.Token != "" {
		httpClient = oauth2.NewClient(context.Background(), oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"},
		))
	}
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		username:   cfg.Username,
		timeout:    timeout,
		log:        logging.With(zap.String("component", "github")),
	}
}

// Username returns the account whose calendar is fetched.
func (c *Client) Username() string {
	return c.username
}

// FetchCalendar performs one GraphQL round trip. It returns *UpstreamError
// when the response lists errors and *FetchError for everything else that
// keeps a calendar from being produced.
func (c *Client) FetchCalendar(ctx context.Context) (*Calendar, error) {
	start := time.Now()
	cal, err := c.fetch(ctx)
	metrics.CalendarFetchDuration.Observe(time.Since(start).Seconds())

	switch err.(type) {
	case nil:
		metrics.CalendarFetches.WithLabelValues("ok").Inc()
	case *UpstreamError:
		metrics.CalendarFetches.WithLabelValues("upstream_error").Inc()
		c.log.Warn("github returned errors", zap.String("username", c.username), zap.Error(err))
	default:
		metrics.CalendarFetches.WithLabelValues("fetch_error").Inc()
		c.log.Error("contribution calendar fetch failed", zap.String("username", c.username), zap.Error(err))
	}
	return cal, err
}

func (c *Client) fetch(ctx context.Context) (*Calendar, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(graphQLRequest{
		Query:     calendarQuery,
		Variables: map[string]any{"username": c.username},
	})
	if err != nil {
		return nil, &FetchError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &FetchError{Err: fmt.Errorf("read body: %w", err)}
	}

	var decoded graphQLResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &FetchError{Err: fmt.Errorf("decode body (status %d): %w", resp.StatusCode, err)}
	}

	if decoded.Errors != nil {
		return nil, &UpstreamError{Errors: *decoded.Errors}
	}

	cal := decoded.calendar()
	if cal == nil {
		return nil, &FetchError{Err: fmt.Errorf("status %d: %w", resp.StatusCode, ErrMissingCalendar)}
	}
	if cal.Weeks == nil {
		cal.Weeks = []Week{}
	}
	return cal, nil
}
