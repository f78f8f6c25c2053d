package main

import (
	_ "embed"
	"strings"

	"go.uber.org/zap"

	"github.com/radityprtama/folio/internal/cli"
	"github.com/radityprtama/folio/internal/logging"
)

//go:embed VERSION
var versionFile string

// buildVersion is set with -ldflags at release time and wins over VERSION.
var buildVersion string

var executeCLI = cli.Execute

func run() error {
	version := strings.TrimSpace(versionFile)
	if buildVersion != "" {
		version = buildVersion
	}
	return executeCLI(version)
}

func main() {
	if err := run(); err != nil {
		logging.Fatal("folio execution failed", zap.Error(err))
	}
}
