package counter

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/radityprtama/folio/internal/config"
)

// ErrUnsupportedScheme is returned by Open for a store URL it cannot serve.
var ErrUnsupportedScheme = errors.New("unsupported store scheme")

// Store is an external key-value store with a native atomic increment.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value for key; found is false when the key does not exist.
	Get(ctx context.Context, key string) (value int64, found bool, err error)
	// Incr atomically increments key by one and returns the new value.
	Incr(ctx context.Context, key string) (int64, error)
	// SeedIfAbsent sets key to seed only if it does not exist yet.
	SeedIfAbsent(ctx context.Context, key string, seed int64) error
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the Store selected by the URL scheme of cfg.URL. It does not
// require the store to be reachable; connectivity is checked per call.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		return nil, errors.New("store url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid store url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "redis", "rediss":
		return openRedis(raw, cfg.Token)
	case "http", "https":
		return openREST(raw, cfg.Token)
	case "postgres", "postgresql":
		return openPostgres(raw, cfg.Token)
	case "mongodb", "mongodb+srv":
		return openMongo(ctx, raw, cfg.Token)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, u.Scheme)
	}
}

// Redacted returns the store URL with any password removed, for logging.
func Redacted(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	return u.Redacted()
}
