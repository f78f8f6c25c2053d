package middleware

import (
	"github.com/gofiber/fiber/v3"
)

// conditionalHeaders would let a client or proxy revalidate into a 304.
var conditionalHeaders = []string{
	fiber.HeaderIfNoneMatch,
	fiber.HeaderIfModifiedSince,
	fiber.HeaderIfMatch,
	fiber.HeaderIfUnmodifiedSince,
}

// NoStore marks responses as uncacheable at every layer. Conditional request
// headers are stripped before the handler runs and validators are removed
// from the response, so every request yields a fresh 200.
func NoStore() fiber.Handler {
	return func(c fiber.Ctx) error {
		for _, h := range conditionalHeaders {
			c.Request().Header.Del(h)
		}

		err := c.Next()

		c.Response().Header.Del(fiber.HeaderETag)
		c.Response().Header.Del(fiber.HeaderLastModified)
		c.Set(fiber.HeaderCacheControl, "no-store, no-cache, must-revalidate, max-age=0")
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")
		return err
	}
}
