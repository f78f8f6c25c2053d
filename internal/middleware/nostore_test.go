package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNoStoreSetsHeaders(t *testing.T) {
	app := fiber.New()
	app.Get("/api/visitor-count", NoStore(), func(c fiber.Ctx) error {
		c.Set(fiber.HeaderETag, `"abc"`)
		c.Set(fiber.HeaderLastModified, "Mon, 02 Jan 2006 15:04:05 GMT")
		c.Set(fiber.HeaderCacheControl, "public, max-age=3600")
		return c.JSON(fiber.Map{"count": 1240})
	})

	req := httptest.NewRequest(http.MethodGet, "/api/visitor-count", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store, no-cache, must-revalidate, max-age=0", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
	assert.Equal(t, "0", resp.Header.Get("Expires"))
	assert.Empty(t, resp.Header.Get("ETag"))
	assert.Empty(t, resp.Header.Get("Last-Modified"))
}

func TestNoStoreStripsConditionalRequestHeaders(t *testing.T) {
	var seen []string
	app := fiber.New()
	app.Get("/api/github", NoStore(), func(c fiber.Ctx) error {
		for _, h := range conditionalHeaders {
			if v := c.Get(h); v != "" {
				seen = append(seen, h)
			}
		}
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/github", nil)
	req.Header.Set("If-None-Match", `"abc"`)
	req.Header.Set("If-Modified-Since", "Mon, 02 Jan 2006 15:04:05 GMT")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, seen)
}

func TestNoStoreAppliesOnHandlerError(t *testing.T) {
	app := fiber.New()
	app.Get("/boom", NoStore(), func(c fiber.Ctx) error {
		return fiber.ErrInternalServerError
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
}
