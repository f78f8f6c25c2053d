// Package test provides testing utilities for folio
package test

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/peterldowns/pgtestdb"
	"github.com/peterldowns/pgtestdb/migrators/golangmigrator"
)

// DatabaseURLEnv names the variable that enables PostgreSQL integration tests.
const DatabaseURLEnv = "FOLIO_TEST_DATABASE_URL"

// TestDB holds database connection for tests
type TestDB struct {
	DB *sql.DB
}

// NewTestDB creates a fresh test database with the counter migrations applied.
// The test is skipped when FOLIO_TEST_DATABASE_URL is not set.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()

	databaseURL := os.Getenv(DatabaseURLEnv)
	if databaseURL == "" {
		t.Skipf("%s not set; skipping PostgreSQL integration test", DatabaseURLEnv)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}

	// Walk up directories to find migrations
	var migrationsPath string
	currentPath := wd
	for {
		testPath := filepath.Join(currentPath, "internal", "counter", "migrations")
		if _, err := os.Stat(testPath); err == nil {
			migrationsPath = testPath
			break
		}
		parent := filepath.Dir(currentPath)
		if parent == currentPath {
			t.Fatalf("could not find migrations directory")
		}
		currentPath = parent
	}

	parsedURL, err := url.Parse(databaseURL)
	if err != nil {
		t.Fatalf("failed to parse %s: %v", DatabaseURLEnv, err)
	}

	port := parsedURL.Port()
	if port == "" {
		port = "5432"
	}
	password, _ := parsedURL.User.Password()
	database := strings.TrimPrefix(parsedURL.Path, "/")
	if database == "" {
		database = "postgres"
	}

	// Each test gets an isolated database cloned from a migrated template.
	db := pgtestdb.New(t, pgtestdb.Config{
		DriverName: "pgx",
		Host:       parsedURL.Hostname(),
		Port:       port,
		User:       parsedURL.User.Username(),
		Password:   password,
		Database:   database,
		Options:    parsedURL.RawQuery,
	}, golangmigrator.New(migrationsPath))

	return &TestDB{
		DB: db,
	}
}

// Exec executes a raw SQL query for test setup/teardown
func (tdb *TestDB) Exec(ctx context.Context, query string, args ...interface{}) error {
	_, err := tdb.DB.ExecContext(ctx, query, args...)
	return err
}

// QueryRow executes a query returning a single row
func (tdb *TestDB) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return tdb.DB.QueryRowContext(ctx, query, args...)
}
