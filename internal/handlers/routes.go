package handlers

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/radityprtama/folio/internal/counter"
	"github.com/radityprtama/folio/internal/github"
	"github.com/radityprtama/folio/internal/heatmap"
	"github.com/radityprtama/folio/internal/middleware"
)

// Deps are the services the routes are bound to.
type Deps struct {
	Counter  *counter.Service
	Store    StoreStatus
	Calendar github.Fetcher
	Heatmap  heatmap.Options
	Version  string
}

// Register mounts every route on app.
func Register(app fiber.Router, d Deps) {
	app.Get("/health", HandleHealth(d.Version, string(d.Counter.Mode()), d.Store))
	app.Get("/up", HandleUp)
	app.Get("/api/version", HandleVersion(d.Version))
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api", middleware.NoStore())
	api.Get("/visitor-count", HandleGetVisitorCount(d.Counter))
	api.Post("/visitor-count", HandleIncrementVisitorCount(d.Counter))
	api.Get("/github", HandleCalendar(d.Calendar))
	api.Get("/github/heatmap", HandleHeatmap(d.Calendar, d.Heatmap))
}
