package cli

import (
	"github.com/spf13/cobra"

	"github.com/radityprtama/folio/internal/config"
)

var Version string

// flagOverrides collects persistent flags that take priority over config.
var flagOverrides config.Overrides

// RootCmd represents the root command
var RootCmd = &cobra.Command{
	Use:   "folio",
	Short: "Portfolio API: visitor counter and contribution calendar",
	Long: `folio serves the dynamic parts of a personal portfolio site.

It keeps a visitor counter, in an external key-value store when one is
configured and in memory otherwise, and relays a GitHub contribution
calendar together with the heatmap derived from it.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Default to serve command if no subcommand provided
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runServe(cmd.Context())
		}
		return cmd.Help()
	},
}

// Execute is called by main
func Execute(version string) error {
	Version = version
	RootCmd.Version = version
	return RootCmd.Execute()
}

func loadConfig() (*config.Config, error) {
	return config.LoadWithOverrides(flagOverrides)
}

func init() {
	RootCmd.PersistentFlags().StringVar(&flagOverrides.Port, "port", "", "Server port (overrides config and PORT)")
	RootCmd.PersistentFlags().StringVar(&flagOverrides.StoreURL, "store-url", "", "Key-value store URL: redis://, https:// (REST), postgres:// or mongodb://")
	RootCmd.PersistentFlags().StringVar(&flagOverrides.GitHubUsername, "github-username", "", "GitHub account whose contribution calendar is served")

	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(healthcheckCmd)
	RootCmd.AddCommand(countCmd)
	RootCmd.AddCommand(calendarCmd)

	setupSelfUpgrade()
}
