package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/radityprtama/folio/internal/github"
	"github.com/radityprtama/folio/internal/heatmap"
	"github.com/radityprtama/folio/internal/httpx"
)

// HandleCalendar relays the contribution calendar.
// GET /api/github
func HandleCalendar(fetcher github.Fetcher) fiber.Handler {
	return func(c fiber.Ctx) error {
		cal, err := fetcher.FetchCalendar(c.Context())
		if err != nil {
			return calendarError(c, err)
		}
		return httpx.WriteJSON(c, fiber.StatusOK, cal)
	}
}

// HandleHeatmap returns the calendar already reduced to the display grid.
// GET /api/github/heatmap
func HandleHeatmap(fetcher github.Fetcher, opts heatmap.Options) fiber.Handler {
	return func(c fiber.Ctx) error {
		cal, err := fetcher.FetchCalendar(c.Context())
		if err != nil {
			return calendarError(c, err)
		}
		return httpx.WriteJSON(c, fiber.StatusOK, heatmap.Build(cal, opts))
	}
}

func calendarError(c fiber.Ctx, err error) error {
	var upstream *github.UpstreamError
	if errors.As(err, &upstream) {
		return httpx.Error(c, fiber.StatusInternalServerError, upstream.Errors)
	}
	return httpx.Error(c, fiber.StatusInternalServerError, fetchFailedMessage)
}
