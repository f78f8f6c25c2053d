package handlers

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"github.com/radityprtama/folio/internal/httpx"
)

// Counter is the visitor counter as the HTTP layer sees it. Neither call fails.
type Counter interface {
	GetCount(ctx context.Context) int64
	IncrementAndGet(ctx context.Context) int64
}

// HandleGetVisitorCount returns the current count without changing it.
// GET /api/visitor-count
func HandleGetVisitorCount(counter Counter) fiber.Handler {
	return func(c fiber.Ctx) error {
		return httpx.WriteJSON(c, fiber.StatusOK, CountResponse{Count: counter.GetCount(c.Context())})
	}
}

// HandleIncrementVisitorCount records one visit and returns the new count.
// POST /api/visitor-count
func HandleIncrementVisitorCount(counter Counter) fiber.Handler {
	return func(c fiber.Ctx) error {
		return httpx.WriteJSON(c, fiber.StatusOK, CountResponse{Count: counter.IncrementAndGet(c.Context())})
	}
}
