//go:build docker

package cli

import (
	"context"

	"github.com/gofiber/fiber/v3"
)

// createFiberConfig returns Fiber configuration for Docker deployments.
func createFiberConfig(appName string) fiber.Config {
	return fiber.Config{
		AppName:     appName,
		ProxyHeader: fiber.HeaderXForwardedFor,
	}
}

// createListenConfig always disables prefork: containers expect a single
// process for health checks and signal handling.
func createListenConfig(ctx context.Context, _ bool) fiber.ListenConfig {
	return fiber.ListenConfig{
		EnablePrefork:         false,
		DisableStartupMessage: true,
		GracefulContext:       ctx,
	}
}
