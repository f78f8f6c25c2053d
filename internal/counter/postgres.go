package counter

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"sync/atomic"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

const (
	selectCounterSQL = `SELECT value FROM visitor_counters WHERE key = $1`
	incrCounterSQL   = `
		INSERT INTO visitor_counters (key, value) VALUES ($1, 1)
		ON CONFLICT (key) DO UPDATE
		SET value = visitor_counters.value + 1, updated_at = NOW()
		RETURNING value`
	seedCounterSQL = `
		INSERT INTO visitor_counters (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO NOTHING`
)

// runMigrations is swapped out in tests.
var runMigrations = RunMigrations

// errSchemaPending is returned while another call's migration is still running.
var errSchemaPending = errors.New("counter schema migration in progress")

// sqlStore keeps counters in a PostgreSQL table. The upsert with RETURNING is a
// single statement, so concurrent increments are serialized by the row lock.
type sqlStore struct {
	db  *sql.DB
	dsn string

	schemaReady atomic.Bool
	migrating   atomic.Bool
}

func openPostgres(rawURL, token string) (*sqlStore, error) {
	dsn, err := withPassword(rawURL, token)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	return &sqlStore{db: db, dsn: dsn}, nil
}

// withPassword fills in token as the password when the URL carries none.
func withPassword(rawURL, token string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid postgres url: %w", err)
	}
	if token == "" || u.User == nil {
		return rawURL, nil
	}
	if _, hasPassword := u.User.Password(); hasPassword {
		return rawURL, nil
	}
	u.User = url.UserPassword(u.User.Username(), token)
	return u.String(), nil
}

// ensureSchema applies migrations lazily so a database that is down at
// startup is picked up once it comes back. Only one migration runs at a time;
// other callers fail fast instead of queueing behind it. The caller waits at
// most until ctx is done, after which the migration finishes in the background.
func (s *sqlStore) ensureSchema(ctx context.Context) error {
	if s.schemaReady.Load() {
		return nil
	}
	if !s.migrating.CompareAndSwap(false, true) {
		return errSchemaPending
	}

	done := make(chan error, 1)
	go func() {
		err := runMigrations(s.dsn)
		if err == nil {
			s.schemaReady.Store(true)
		}
		s.migrating.Store(false)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("waiting for counter schema: %w", ctx.Err())
	}
}

func (s *sqlStore) Get(ctx context.Context, key string) (int64, bool, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, false, err
	}
	var value int64
	err := s.db.QueryRowContext(ctx, selectCounterSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read counter: %w", err)
	}
	return value, true, nil
}

func (s *sqlStore) Incr(ctx context.Context, key string) (int64, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, err
	}
	var value int64
	if err := s.db.QueryRowContext(ctx, incrCounterSQL, key).Scan(&value); err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return value, nil
}

func (s *sqlStore) SeedIfAbsent(ctx context.Context, key string, seed int64) error {
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, seedCounterSQL, key, seed); err != nil {
		return fmt.Errorf("failed to seed counter: %w", err)
	}
	return nil
}

func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

// RunMigrations runs all pending counter schema migrations
func RunMigrations(databaseURL string) error {
	sourceDriver, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer func() {
		_, _ = m.Close()
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}
