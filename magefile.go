//go:build mage

package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binaryName = "folio"
	mainPkg    = "./cmd/folio"
)

func ldflags() string {
	version, err := os.ReadFile("cmd/folio/VERSION")
	if err != nil {
		return "-s -w"
	}
	return fmt.Sprintf("-s -w -X main.buildVersion=%s", strings.TrimSpace(string(version)))
}

// Build builds folio for Linux with Green Tea GC
func Build() error {
	fmt.Println("Building folio for linux/amd64...")
	env := map[string]string{
		"GOOS":         "linux",
		"GOARCH":       "amd64",
		"CGO_ENABLED":  "0",
		"GOEXPERIMENT": "greenteagc",
	}
	return sh.RunWith(env, "go", "build", "-ldflags", ldflags(), "-o", binaryName+"-linux-amd64", mainPkg)
}

// BuildDocker builds the container variant (prefork disabled, no self-upgrade)
func BuildDocker() error {
	fmt.Println("Building folio with the docker tag...")
	env := map[string]string{
		"GOOS":        "linux",
		"CGO_ENABLED": "0",
	}
	return sh.RunWith(env, "go", "build", "-tags", "docker", "-o", binaryName+"-docker", mainPkg)
}

// BuildLocal builds folio for current platform
func BuildLocal() error {
	fmt.Printf("Building folio for %s/%s...\n", runtime.GOOS, runtime.GOARCH)
	return sh.Run("go", "build", "-o", binaryName, mainPkg)
}

// Test runs tests
func Test() error {
	fmt.Println("Running tests...")
	return sh.Run("go", "test", "-race", "./...")
}

// TestDocker runs tests with the docker build tag
func TestDocker() error {
	fmt.Println("Running tests (docker tag)...")
	return sh.Run("go", "test", "-tags", "docker", "./internal/cli/...")
}

// TestIntegration runs tests including the PostgreSQL store; needs FOLIO_TEST_DATABASE_URL
func TestIntegration() error {
	if os.Getenv("FOLIO_TEST_DATABASE_URL") == "" {
		return fmt.Errorf("FOLIO_TEST_DATABASE_URL is required")
	}
	fmt.Println("Running integration tests...")
	return sh.Run("go", "test", "-count=1", "./internal/counter/...")
}

// Clean removes build artifacts
func Clean() error {
	fmt.Println("Cleaning build artifacts...")
	for _, f := range []string{binaryName, binaryName + "-linux-amd64", binaryName + "-docker"} {
		_ = os.Remove(f)
	}
	return nil
}

// Update upgrades all Go dependencies
func Update() error {
	fmt.Println("Updating dependencies...")
	if err := sh.Run("go", "get", "-u", "./..."); err != nil {
		return err
	}
	return sh.Run("go", "mod", "tidy")
}

// Fmt runs gofmt on all Go files
func Fmt() error {
	fmt.Println("Formatting code...")
	return sh.Run("go", "fmt", "./...")
}

// Vet runs go vet on all Go files
func Vet() error {
	fmt.Println("Vetting code...")
	return sh.Run("go", "vet", "./...")
}

// Deps downloads dependencies
func Deps() error {
	fmt.Println("Downloading dependencies...")
	return sh.Run("go", "mod", "download")
}

// CI runs all checks for continuous integration
func CI() error {
	mg.SerialDeps(Deps, Fmt, Vet, Test, TestDocker)
	fmt.Println("All CI checks passed!")
	return nil
}
