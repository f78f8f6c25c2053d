package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radityprtama/folio/internal/config"
	"github.com/radityprtama/folio/internal/counter"
	"github.com/radityprtama/folio/internal/github"
)

type staticCalendar struct{}

func (staticCalendar) FetchCalendar(context.Context) (*github.Calendar, error) {
	return &github.Calendar{TotalContributions: 3, Weeks: []github.Week{}}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		Port:           "3000",
		AllowedOrigins: []string{"https://pratama.dev"},
		Store:          config.StoreConfig{Key: "visitor_count", Seed: 1240},
	}
}

func TestNewCounterServiceModes(t *testing.T) {
	ctx := context.Background()

	svc := newCounterService(ctx, config.StoreConfig{Key: "visitor_count", Seed: 1240})
	assert.Equal(t, counter.ModeMemory, svc.Mode())

	svc = newCounterService(ctx, config.StoreConfig{URL: "ftp://example.com", Key: "visitor_count", Seed: 1240})
	assert.Equal(t, counter.ModeMemory, svc.Mode(), "unsupported scheme falls back to memory")

	mr := miniredis.RunT(t)
	svc = newCounterService(ctx, config.StoreConfig{URL: "redis://" + mr.Addr(), Key: "visitor_count", Seed: 1240})
	t.Cleanup(func() { _ = svc.Close() })
	assert.Equal(t, counter.ModeStore, svc.Mode())
	assert.Equal(t, int64(1241), svc.IncrementAndGet(ctx))

	stored, err := mr.Get("visitor_count")
	require.NoError(t, err)
	assert.Equal(t, "1241", stored)
}

func TestBuildAppMiddleware(t *testing.T) {
	originalVersion := Version
	Version = "1.2.3"
	t.Cleanup(func() { Version = originalVersion })

	svc := newCounterService(context.Background(), testConfig().Store)
	app := buildApp(testConfig(), svc, nil, staticCalendar{})

	req := httptest.NewRequest(http.MethodPost, "/api/visitor-count", nil)
	req.Header.Set("Origin", "https://pratama.dev")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.2.3", resp.Header.Get("X-Folio-Version"))
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "https://pratama.dev", resp.Header.Get("Access-Control-Allow-Origin"))

	var payload map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, int64(1241), payload["count"])
}

func TestBuildAppCalendarRoute(t *testing.T) {
	svc := newCounterService(context.Background(), testConfig().Store)
	app := buildApp(testConfig(), svc, nil, staticCalendar{})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/github", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var payload github.Calendar
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&payload))
	assert.Equal(t, 3, payload.TotalContributions)
}

func TestLocalBaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000", localBaseURL(""))
	assert.Equal(t, "http://localhost:8080", localBaseURL("8080"))
}
