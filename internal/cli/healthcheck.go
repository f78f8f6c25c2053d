package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/radityprtama/folio/internal/client"
)

var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check if the server is healthy",
	Long:  "Performs an HTTP request to the /up endpoint to verify the server is serving requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Second)
		defer cancel()

		if err := client.New(localBaseURL(cfg.Port), 2*time.Second).Up(ctx); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Healthcheck failed: %v\n", err)
			return fmt.Errorf("healthcheck failed: %w", err)
		}
		return nil
	},
}

func localBaseURL(port string) string {
	if port == "" {
		port = "3000" // Default port
	}
	return fmt.Sprintf("http://localhost:%s", port)
}
