package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/radityprtama/folio/internal/client"
)

var (
	countVisit   bool
	countBaseURL string
)

var countCmd = &cobra.Command{
	Use:   "count [--visit]",
	Short: "Show the visitor count of a running server",
	Long: `Read the visitor count from a running folio server.

With --visit the call is counted as a new visit (POST), the way the site
does on the first page view of a browser session. Without it the count is
only read (GET).

Examples:
  folio count
  folio count --visit --url https://example.com`,
	RunE: func(cmd *cobra.Command, args []string) error {
		baseURL := countBaseURL
		if baseURL == "" {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			baseURL = localBaseURL(cfg.Port)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
		defer cancel()

		return runCount(ctx, cmd.OutOrStdout(), client.New(baseURL, 0), countVisit)
	},
}

func runCount(ctx context.Context, out io.Writer, api client.CountAPI, visit bool) error {
	var (
		count int64
		err   error
	)
	if visit {
		// A fresh session: the first load increments.
		count, err = client.NewVisitor(api, &client.Session{}).Load(ctx)
	} else {
		count, err = api.GetCount(ctx)
	}
	if err != nil {
		return fmt.Errorf("failed to read visitor count: %w", err)
	}

	fmt.Fprintf(out, "%d visitors\n", count)
	return nil
}

func init() {
	countCmd.Flags().BoolVar(&countVisit, "visit", false, "Count this call as a visit (increments)")
	countCmd.Flags().StringVar(&countBaseURL, "url", "", "Base URL of the folio server (default: http://localhost:<port>)")
}
