//go:build !docker

package cli

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// createFiberConfig returns Fiber configuration.
func createFiberConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName: appName,
		// Use X-Forwarded-For to get real client IP behind reverse proxy
		ProxyHeader: fiber.HeaderXForwardedFor,
	}
}

// createListenConfig honours the prefork setting. Each prefork child keeps
// its own in-memory counter fallback.
func createListenConfig(ctx context.Context, prefork bool) fiber.ListenConfig {
	return fiber.ListenConfig{
		EnablePrefork:         prefork,
		DisableStartupMessage: true,
		GracefulContext:       ctx,
	}
}
