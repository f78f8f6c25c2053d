package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Defaults applied before any config source is consulted.
const (
	DefaultPort             = "3000"
	DefaultStoreKey         = "visitor_count"
	DefaultSeed             = int64(1240)
	DefaultStoreTimeout     = 2 * time.Second
	DefaultGitHubEndpoint   = "https://api.github.com/graphql"
	DefaultGitHubUsername   = "radityprtama"
	DefaultGitHubTimeout    = 10 * time.Second
	DefaultHeatmapWeeks     = 51
	DefaultMinLabelGap      = 3
	DefaultMinTrailingWeeks = 2
)

// Config holds application configuration
type Config struct {
	Port           string
	Prefork        bool
	AllowedOrigins []string
	Store          StoreConfig
	GitHub         GitHubConfig
	Heatmap        HeatmapConfig
}

// StoreConfig describes the optional external key-value store backing the visitor counter.
type StoreConfig struct {
	URL     string
	Token   string
	Key     string
	Seed    int64
	Timeout time.Duration
}

// Configured reports whether a backing store was supplied at all.
func (s StoreConfig) Configured() bool {
	return strings.TrimSpace(s.URL) != ""
}

// GitHubConfig holds the contribution calendar upstream settings.
type GitHubConfig struct {
	Token    string
	Username string
	Endpoint string
	Timeout  time.Duration
}

// HeatmapConfig holds the display thresholds for the contribution heatmap.
// They are tuned to a fixed 13px column width.
type HeatmapConfig struct {
	Weeks            int
	MinLabelGap      int
	MinTrailingWeeks int
}

// Overrides are values supplied by command flags; empty fields are ignored.
type Overrides struct {
	Port           string
	StoreURL       string
	GitHubUsername string
}

// dotenvFiles are loaded in order when present. Existing environment variables win.
var dotenvFiles = []string{".env.local", ".env"}

// Load loads configuration from multiple sources with priority:
// 1. Command flags (see LoadWithOverrides)
// 2. Config file (./folio.toml or $XDG_CONFIG_HOME/folio/folio.toml)
// 3. Environment variables (including .env.local / .env)
func Load() (*Config, error) {
	return LoadWithOverrides(Overrides{})
}

// LoadWithOverrides loads config and applies flag overrides
func LoadWithOverrides(o Overrides) (*Config, error) {
	if err := loadDotEnv(); err != nil {
		return nil, err
	}
	v := newBaseViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}
	return buildConfig(v, o), nil
}

func loadDotEnv() error {
	for _, name := range dotenvFiles {
		if _, err := os.Stat(name); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return err
		}
	}
	return nil
}

func newBaseViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName("folio")
	v.SetConfigType("toml")
	v.AddConfigPath(".")

	// XDG lookup is done by hand so tests can move HOME around.
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home, err := os.UserHomeDir(); err == nil {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		v.AddConfigPath(filepath.Join(configHome, "folio"))
	}

	return v
}

func buildConfig(v *viper.Viper, o Overrides) *Config {
	cfg := &Config{
		Port:           DefaultPort,
		AllowedOrigins: []string{"*"},
		Store: StoreConfig{
			Key:     DefaultStoreKey,
			Seed:    DefaultSeed,
			Timeout: DefaultStoreTimeout,
		},
		GitHub: GitHubConfig{
			Username: DefaultGitHubUsername,
			Endpoint: DefaultGitHubEndpoint,
			Timeout:  DefaultGitHubTimeout,
		},
		Heatmap: HeatmapConfig{
			Weeks:            DefaultHeatmapWeeks,
			MinLabelGap:      DefaultMinLabelGap,
			MinTrailingWeeks: DefaultMinTrailingWeeks,
		},
	}

	// Apply config file values
	if v.IsSet("port") {
		cfg.Port = v.GetString("port")
	}
	if v.IsSet("prefork") {
		cfg.Prefork = v.GetBool("prefork")
	}
	if v.IsSet("allowed_origins") {
		cfg.AllowedOrigins = parseOrigins(v.GetString("allowed_origins"))
	}
	if v.IsSet("store.url") {
		cfg.Store.URL = v.GetString("store.url")
	}
	if v.IsSet("store.token") {
		cfg.Store.Token = v.GetString("store.token")
	}
	if v.IsSet("store.key") {
		cfg.Store.Key = v.GetString("store.key")
	}
	if v.IsSet("store.seed") {
		cfg.Store.Seed = v.GetInt64("store.seed")
	}
	if v.IsSet("store.timeout") {
		cfg.Store.Timeout = v.GetDuration("store.timeout")
	}
	if v.IsSet("github.token") {
		cfg.GitHub.Token = v.GetString("github.token")
	}
	if v.IsSet("github.username") {
		cfg.GitHub.Username = v.GetString("github.username")
	}
	if v.IsSet("github.endpoint") {
		cfg.GitHub.Endpoint = v.GetString("github.endpoint")
	}
	if v.IsSet("github.timeout") {
		cfg.GitHub.Timeout = v.GetDuration("github.timeout")
	}
	if v.IsSet("heatmap.weeks") {
		cfg.Heatmap.Weeks = v.GetInt("heatmap.weeks")
	}
	if v.IsSet("heatmap.min_label_gap") {
		cfg.Heatmap.MinLabelGap = v.GetInt("heatmap.min_label_gap")
	}
	if v.IsSet("heatmap.min_trailing_weeks") {
		cfg.Heatmap.MinTrailingWeeks = v.GetInt("heatmap.min_trailing_weeks")
	}

	// Environment fallback (only if not configured)
	if !v.IsSet("port") {
		if envPort := os.Getenv("PORT"); envPort != "" {
			cfg.Port = envPort
		}
	}
	if !v.IsSet("prefork") {
		if envPrefork := os.Getenv("PREFORK"); envPrefork != "" {
			cfg.Prefork = envPrefork == "true"
		}
	}
	if !v.IsSet("allowed_origins") {
		if envOrigins := os.Getenv("ALLOWED_ORIGINS"); envOrigins != "" {
			cfg.AllowedOrigins = parseOrigins(envOrigins)
		}
	}
	if cfg.Store.URL == "" {
		cfg.Store.URL = firstEnv("STORE_URL", "KV_REST_API_URL")
	}
	if cfg.Store.Token == "" {
		cfg.Store.Token = firstEnv("STORE_TOKEN", "KV_REST_API_TOKEN")
	}
	if !v.IsSet("store.key") {
		if envKey := os.Getenv("STORE_KEY"); envKey != "" {
			cfg.Store.Key = envKey
		}
	}
	if !v.IsSet("store.seed") {
		if seed, err := strconv.ParseInt(os.Getenv("VISITOR_SEED"), 10, 64); err == nil && seed >= 0 {
			cfg.Store.Seed = seed
		}
	}
	if cfg.GitHub.Token == "" {
		cfg.GitHub.Token = os.Getenv("GITHUB_TOKEN")
	}
	if !v.IsSet("github.username") {
		if envUser := os.Getenv("GITHUB_USERNAME"); envUser != "" {
			cfg.GitHub.Username = envUser
		}
	}
	if !v.IsSet("github.endpoint") {
		if envEndpoint := os.Getenv("GITHUB_GRAPHQL_URL"); envEndpoint != "" {
			cfg.GitHub.Endpoint = envEndpoint
		}
	}
	if !v.IsSet("github.timeout") {
		if d, err := time.ParseDuration(os.Getenv("GITHUB_TIMEOUT")); err == nil && d > 0 {
			cfg.GitHub.Timeout = d
		}
	}

	// Apply overrides (flags) last
	if o.Port != "" {
		cfg.Port = o.Port
	}
	if o.StoreURL != "" {
		cfg.Store.URL = o.StoreURL
	}
	if o.GitHubUsername != "" {
		cfg.GitHub.Username = o.GitHubUsername
	}

	if cfg.Store.Timeout <= 0 {
		cfg.Store.Timeout = DefaultStoreTimeout
	}
	if cfg.GitHub.Timeout <= 0 {
		cfg.GitHub.Timeout = DefaultGitHubTimeout
	}

	return cfg
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	return ""
}

// parseOrigins parses a comma-separated string into sanitized CORS origins
func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return []string{}
	}

	parts := strings.Split(originsStr, ",")
	origins := make([]string, 0, len(parts))

	for _, part := range parts {
		origin, err := SanitizeOrigin(part)
		if err != nil {
			continue
		}
		origins = append(origins, origin)
	}

	return origins
}
