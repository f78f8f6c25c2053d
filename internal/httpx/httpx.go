// Package httpx holds small JSON response helpers shared by the HTTP handlers.
package httpx

import (
	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"github.com/radityprtama/folio/internal/logging"
)

// WriteJSON writes a JSON payload with the provided status code.
func WriteJSON(c fiber.Ctx, status int, payload any) error {
	if err := c.Status(status).JSON(payload); err != nil {
		logging.L().Warn("failed to encode JSON response", zap.Error(err), zap.String("path", c.Path()))
		return err
	}
	return nil
}

// Error writes a standard error envelope. detail is a message string or the
// structured upstream errors.
func Error(c fiber.Ctx, status int, detail any) error {
	return WriteJSON(c, status, fiber.Map{
		"error": detail,
	})
}
