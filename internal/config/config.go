package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// DefaultBaseURL is used when neither an override nor a remote host is configured.
const DefaultBaseURL = "http://localhost:8000/api"

type Config struct {
	APIURL    string `env:"NEXO_API_URL"`
	Host      string `env:"NEXO_HOST"`
	APIPort   int    `env:"NEXO_API_PORT,   default=8000"`
	APIScheme string `env:"NEXO_API_SCHEME, default=http"`

	Home           string `env:"NEXO_HOME"`
	Profile        string `env:"NEXO_PROFILE,         default=default"`
	SessionBackend string `env:"NEXO_SESSION_BACKEND, default=file"`
	Token          string `env:"NEXO_TOKEN"`

	LogLevel    string `env:"NEXO_LOG_LEVEL, default=info"`
	LogFile     string `env:"NEXO_LOG_FILE"`
	MetricsAddr string `env:"NEXO_METRICS_ADDR"`

	SearchDebounce time.Duration `env:"NEXO_SEARCH_DEBOUNCE, default=500ms"`

	Redis RedisConfig
}

type RedisConfig struct {
	Addr string `env:"NEXO_REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"NEXO_REDIS_DB,   default=0"`
}

// Load reads .env (when present) and then the process environment.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom processes configuration from an arbitrary lookuper (tests use
// envconfig.MapLookuper).
func LoadFrom(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	switch cfg.SessionBackend {
	case "file", "redis":
	default:
		return nil, fmt.Errorf("config: unknown session backend %q", cfg.SessionBackend)
	}
	return &cfg, nil
}

// BaseURL is the API root every request is resolved against.
func (c *Config) BaseURL() string {
	return ResolveBaseURL(c.APIURL, c.Host, c.APIScheme, c.APIPort)
}

// HomeDir is where the session file and log live (~/.nexo by default).
func (c *Config) HomeDir() (string, error) {
	if c.Home != "" {
		return c.Home, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("home: %w", err)
	}
	return filepath.Join(home, ".nexo"), nil
}

// LogToStderr reports NEXO_LOG_FILE=-, which sends human-readable logs to
// stderr instead of a file.
func (c *Config) LogToStderr() bool { return c.LogFile == "-" }

// LogPath defaults to <home>/nexo.log; the TUI owns stdout.
func (c *Config) LogPath() (string, error) {
	if c.LogFile != "" {
		return c.LogFile, nil
	}
	dir, err := c.HomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "nexo.log"), nil
}

// ResolveBaseURL picks the explicit override, else derives <scheme>://<host>:<port>/api
// from a non-local host, else falls back to DefaultBaseURL.
func ResolveBaseURL(override, host, scheme string, port int) string {
	if o := strings.TrimSpace(override); o != "" {
		return strings.TrimRight(o, "/")
	}
	host = strings.TrimSpace(host)
	if host == "" || host == "localhost" || host == "127.0.0.1" {
		return DefaultBaseURL
	}
	if scheme == "" {
		scheme = "http"
	}
	if port <= 0 {
		port = 8000
	}
	return scheme + "://" + host + ":" + strconv.Itoa(port) + "/api"
}
