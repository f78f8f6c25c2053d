package handlers

import (
	"github.com/gofiber/fiber/v3"

	"github.com/radityprtama/folio/internal/httpx"
)

// StoreStatus reports counter backend reachability as last observed by the
// background prober.
type StoreStatus interface {
	Up() bool
}

// HandleHealth reports service status. A store outage is reported as
// degraded but keeps 200, because the counter keeps serving from memory.
// GET /health
func HandleHealth(version, mode string, store StoreStatus) fiber.Handler {
	return func(c fiber.Ctx) error {
		resp := HealthResponse{
			Status:  "healthy",
			Service: "folio",
			Version: version,
			Counter: CounterHealth{Mode: mode, Store: "none"},
		}

		if mode == "store" {
			switch {
			case store == nil:
				resp.Counter.Store = "unknown"
			case store.Up():
				resp.Counter.Store = "ok"
			default:
				resp.Status = "degraded"
				resp.Counter.Store = "unavailable"
			}
		}

		return httpx.WriteJSON(c, fiber.StatusOK, resp)
	}
}

// HandleUp is the container liveness probe.
// GET /up
func HandleUp(c fiber.Ctx) error {
	return c.SendStatus(fiber.StatusOK)
}

// HandleVersion returns the build version.
// GET /api/version
func HandleVersion(version string) fiber.Handler {
	return func(c fiber.Ctx) error {
		return httpx.WriteJSON(c, fiber.StatusOK, fiber.Map{
			"version": version,
		})
	}
}
