//go:build !docker

package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
	"github.com/spf13/cobra"
)

// releaseRepository is the GitHub repository releases are published to.
const releaseRepository = "radityprtama/folio"

var (
	selfUpgradeRequested bool
	selfUpgradeCheckOnly bool
	selfUpgradeAutoYes   bool
)

// Swapped out in tests.
var (
	detectLatest    = selfupdate.DetectLatest
	updateTo        = selfupdate.UpdateTo
	executablePath  = os.Executable
	selfUpgradeExit = os.Exit
)

func setupSelfUpgrade() {
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeRequested, "self-upgrade", false, "Upgrade folio to the latest release and exit")
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeCheckOnly, "self-upgrade-check", false, "Only check whether a newer folio release is available")
	RootCmd.PersistentFlags().BoolVar(&selfUpgradeAutoYes, "self-upgrade-yes", false, "Skip confirmation prompts when running --self-upgrade")

	existingPreRun := RootCmd.PersistentPreRunE
	RootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if existingPreRun != nil {
			if err := existingPreRun(cmd, args); err != nil {
				return err
			}
		}

		return handleSelfUpgradeFlags(cmd)
	}
}

func handleSelfUpgradeFlags(cmd *cobra.Command) error {
	if !selfUpgradeRequested && !selfUpgradeCheckOnly {
		return nil
	}

	if err := runSelfUpgrade(cmd.OutOrStdout(), cmd.InOrStdin(), Version, selfUpgradeCheckOnly, selfUpgradeAutoYes); err != nil {
		return err
	}

	selfUpgradeExit(0)
	return nil
}

func runSelfUpgrade(out io.Writer, in io.Reader, version string, checkOnly, autoYes bool) error {
	versionStr := strings.TrimSpace(strings.TrimPrefix(version, "v"))
	if versionStr == "" || versionStr == "dev" {
		return errors.New("self-upgrade is only available for release builds")
	}

	current, err := semver.Parse(versionStr)
	if err != nil {
		return fmt.Errorf("invalid current version %q: %w", version, err)
	}

	fmt.Fprintf(out, "Current version: v%s\n", current)

	latest, found, err := detectLatest(releaseRepository)
	if err != nil {
		return fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found {
		return errors.New("no releases found for folio")
	}

	fmt.Fprintf(out, "Latest release:  v%s\n", latest.Version)
	if !latest.Version.GT(current) {
		fmt.Fprintln(out, "folio is already up to date")
		return nil
	}
	if checkOnly {
		fmt.Fprintf(out, "Update available: v%s --> v%s\n", current, latest.Version)
		return nil
	}

	exe, err := executablePath()
	if err != nil {
		return fmt.Errorf("failed to determine executable path: %w", err)
	}

	fmt.Fprintf(out, "Replacing %q (%s/%s)\n", exe, runtime.GOOS, runtime.GOARCH)
	if latest.AssetURL != "" {
		fmt.Fprintf(out, "Download: %s\n", latest.AssetURL)
	}

	if !autoYes {
		fmt.Fprint(out, "Continue? [Y/n] ")
		response, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("failed to read input: %w", err)
		}
		response = strings.ToLower(strings.TrimSpace(response))
		if response != "" && response != "y" && response != "yes" {
			fmt.Fprintln(out, "Update cancelled.")
			return nil
		}
	}

	if err := updateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("self-upgrade failed: %w", err)
	}

	fmt.Fprintf(out, "Updated folio to v%s\n", latest.Version)
	return nil
}
