package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	fiberzap "github.com/gofiber/contrib/v3/zap"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/radityprtama/folio/internal/config"
	"github.com/radityprtama/folio/internal/counter"
	"github.com/radityprtama/folio/internal/github"
	"github.com/radityprtama/folio/internal/handlers"
	"github.com/radityprtama/folio/internal/heatmap"
	"github.com/radityprtama/folio/internal/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the folio API server",
	Long: `Start the folio API server.

Without a store URL the visitor counter lives in memory and restarts from
the seed. With one, the store's atomic increment is used and any store
failure falls back to the in-memory count for that request.

Environment variables:
  PORT                                 Server port (default: 3000)
  KV_REST_API_URL / STORE_URL          Key-value store URL (optional)
  KV_REST_API_TOKEN / STORE_TOKEN      Store token or password (optional)
  GITHUB_TOKEN                         Token for the GitHub GraphQL API
  GITHUB_USERNAME                      Calendar owner (default: radityprtama)

Example:
  STORE_URL="redis://localhost:6379" GITHUB_TOKEN=ghp_xxx folio serve`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

// runServe runs the folio server until SIGINT or SIGTERM.
func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	defer logging.Sync()

	svc := newCounterService(ctx, cfg.Store)
	defer func() {
		if err := svc.Close(); err != nil {
			logging.L().Warn("failed to close store", zap.Error(err))
		}
	}()

	prober := counter.NewProber(svc, counter.DefaultProbeInterval)
	prober.Start()
	defer prober.Stop()

	calendar := github.NewClient(cfg.GitHub)
	if cfg.GitHub.Token == "" {
		logging.L().Warn("GITHUB_TOKEN is not set; calendar requests will be rejected upstream")
	}

	app := buildApp(cfg, svc, prober, calendar)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logging.L().Info("folio starting",
		zap.String("port", cfg.Port),
		zap.String("version", Version),
		zap.String("counter_mode", string(svc.Mode())),
		zap.String("github_username", cfg.GitHub.Username),
	)
	return app.Listen(":"+cfg.Port, createListenConfig(ctx, cfg.Prefork))
}

// newCounterService opens the configured store. A store that cannot be
// opened leaves the service in memory-only mode rather than failing startup.
func newCounterService(ctx context.Context, cfg config.StoreConfig) *counter.Service {
	opts := counter.Options{
		Key:     cfg.Key,
		Seed:    cfg.Seed,
		Timeout: cfg.Timeout,
	}
	fallback := counter.NewMemoryCounter(cfg.Seed)

	if !cfg.Configured() {
		logging.L().Info("no store configured, visitor counter is in-memory", zap.Int64("seed", cfg.Seed))
		return counter.NewService(nil, fallback, opts)
	}

	store, err := counter.Open(ctx, cfg)
	if err != nil {
		logging.L().Warn("store could not be opened, visitor counter is in-memory",
			zap.String("store_url", counter.Redacted(cfg.URL)),
			zap.Error(err),
		)
		return counter.NewService(nil, fallback, opts)
	}

	logging.L().Info("visitor counter backed by store", zap.String("store_url", counter.Redacted(cfg.URL)))
	return counter.NewService(store, fallback, opts)
}

// buildApp assembles middleware and routes.
func buildApp(cfg *config.Config, svc *counter.Service, store handlers.StoreStatus, calendar github.Fetcher) *fiber.App {
	app := fiber.New(createFiberConfig("folio " + Version))

	app.Use(recoverer.New())
	app.Use(requestid.New(requestid.Config{
		Generator: uuid.NewString,
	}))
	app.Use(fiberzap.New(fiberzap.Config{
		Logger: logging.L(),
		Fields: []string{"requestId", "latency", "status", "method", "url", "ip"},
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions},
		AllowHeaders: []string{fiber.HeaderOrigin, fiber.HeaderContentType, fiber.HeaderAccept},
	}))

	// Add version header to all responses
	app.Use(func(c fiber.Ctx) error {
		c.Set("X-Folio-Version", Version)
		return c.Next()
	})

	handlers.Register(app, handlers.Deps{
		Counter:  svc,
		Store:    store,
		Calendar: calendar,
		Heatmap:  heatmap.OptionsFromConfig(cfg.Heatmap),
		Version:  Version,
	})

	return app
}
