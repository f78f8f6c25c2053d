package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"

	"github.com/radityprtama/folio/internal/client"
	"github.com/radityprtama/folio/internal/config"
	"github.com/radityprtama/folio/internal/github"
	"github.com/radityprtama/folio/internal/heatmap"
)

var (
	calendarFormat  string
	calendarBaseURL string
	calendarDirect  bool
	calendarNoColor bool
)

var calendarCmd = &cobra.Command{
	Use:   "calendar [--format text|json|yaml]",
	Short: "Render the contribution heatmap",
	Long: `Render the contribution heatmap in the terminal.

By default the heatmap is read from a running folio server. With --direct
the calendar is fetched straight from the GitHub GraphQL API using the
configured token and derived locally.

Supported formats:
  text   - heatmap grid (colour when stdout is a terminal)
  json   - derived heatmap as JSON
  yaml   - derived heatmap as YAML`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.GitHub.Timeout+5*time.Second)
		defer cancel()

		h, err := loadHeatmap(ctx, cfg)
		if err != nil {
			return err
		}

		color := !calendarNoColor && isTerminal(cmd.OutOrStdout())
		return writeHeatmap(cmd.OutOrStdout(), *h, calendarFormat, color)
	},
}

func loadHeatmap(ctx context.Context, cfg *config.Config) (*heatmap.Heatmap, error) {
	if calendarDirect {
		cal, err := github.NewClient(cfg.GitHub).FetchCalendar(ctx)
		if err != nil {
			return nil, err
		}
		h := heatmap.Build(cal, heatmap.OptionsFromConfig(cfg.Heatmap))
		return &h, nil
	}

	baseURL := calendarBaseURL
	if baseURL == "" {
		baseURL = localBaseURL(cfg.Port)
	}
	h, err := client.New(baseURL, 0).Heatmap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch heatmap: %w", err)
	}
	return h, nil
}

func writeHeatmap(w io.Writer, h heatmap.Heatmap, format string, color bool) error {
	switch format {
	case "", "text":
		return heatmap.Render(w, h, color)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(h)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(h); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("invalid format: %s", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func init() {
	calendarCmd.Flags().StringVarP(&calendarFormat, "format", "f", "text", "Output format (text, json, yaml)")
	calendarCmd.Flags().StringVar(&calendarBaseURL, "url", "", "Base URL of the folio server (default: http://localhost:<port>)")
	calendarCmd.Flags().BoolVar(&calendarDirect, "direct", false, "Fetch from GitHub directly instead of a running server")
	calendarCmd.Flags().BoolVar(&calendarNoColor, "no-color", false, "Disable ANSI colours")
}
