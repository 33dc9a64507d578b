// Package config loads hepgraph settings from built-in defaults, a YAML file
// under the XDG config directory and HEPGRAPH_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Benkendorfer/HEP-paper-graph/internal/cache"
	"github.com/Benkendorfer/HEP-paper-graph/internal/ratelimit"
)

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "hepgraph"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
	// EnvPrefix prefixes every environment override.
	EnvPrefix = "HEPGRAPH_"

	DefaultBaseURL        = "https://inspirehep.net/api"
	DefaultCacheDir       = "cache"
	DefaultRequestTimeout = 5 * time.Second
	DefaultDepth          = 1
	DefaultLogLevel       = "info"
)

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds every tunable setting.
type Config struct {
	BaseURL        string        `yaml:"base_url" json:"base_url" env:"BASE_URL"`
	CacheDir       string        `yaml:"cache_dir" json:"cache_dir" env:"CACHE_DIR"`
	MaxRequests    int           `yaml:"max_requests" json:"max_requests" env:"MAX_REQUESTS"`
	TimeWindow     time.Duration `yaml:"time_window" json:"time_window" env:"TIME_WINDOW"`
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout" env:"REQUEST_TIMEOUT"`
	Limiter        string        `yaml:"limiter" json:"limiter" env:"LIMITER"`
	UseCache       bool          `yaml:"use_cache" json:"use_cache" env:"USE_CACHE"`
	Depth          int           `yaml:"depth" json:"depth" env:"DEPTH"`
	LogLevel       string        `yaml:"log_level" json:"log_level" env:"LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		CacheDir:       DefaultCacheDir,
		MaxRequests:    ratelimit.DefaultMaxRequests,
		TimeWindow:     ratelimit.DefaultTimeWindow,
		RequestTimeout: DefaultRequestTimeout,
		Limiter:        ratelimit.ModeWindow,
		UseCache:       true,
		Depth:          DefaultDepth,
		LogLevel:       DefaultLogLevel,
	}
}

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/hepgraph/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// Load builds the configuration from defaults, the global config file and
// the process environment, then validates it.
func Load() (*Config, error) {
	return LoadFrom(GlobalConfigPath(), nil)
}

// LoadFrom is Load with an explicit file path and environment. A nil
// environ reads the process environment. A missing file is not an error.
func LoadFrom(path string, environ map[string]string) (*Config, error) {
	cfg := Default()
	if err := cfg.mergeFile(path); err != nil {
		return nil, err
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}

	cfg.CacheDir = ExpandTilde(cfg.CacheDir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the client cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base_url is empty", ErrInvalidConfig)
	case c.CacheDir == "":
		return fmt.Errorf("%w: cache_dir is empty", ErrInvalidConfig)
	case c.MaxRequests <= 0:
		return fmt.Errorf("%w: max_requests must be positive, got %d", ErrInvalidConfig, c.MaxRequests)
	case c.TimeWindow <= 0:
		return fmt.Errorf("%w: time_window must be positive, got %s", ErrInvalidConfig, c.TimeWindow)
	case c.RequestTimeout <= 0:
		return fmt.Errorf("%w: request_timeout must be positive, got %s", ErrInvalidConfig, c.RequestTimeout)
	case c.Depth <= 0:
		return fmt.Errorf("%w: depth must be positive, got %d", ErrInvalidConfig, c.Depth)
	}
	switch c.Limiter {
	case ratelimit.ModeWindow, ratelimit.ModeBucket:
	default:
		return fmt.Errorf("%w: limiter must be %s or %s, got %q",
			ErrInvalidConfig, ratelimit.ModeWindow, ratelimit.ModeBucket, c.Limiter)
	}
	switch strings.ToLower(c.LogLevel) {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	return nil
}

// TitleLogPath returns the title log location inside the cache directory.
func (c *Config) TitleLogPath() string {
	return filepath.Join(c.CacheDir, cache.TitleLogFile)
}

// ExpandTilde expands a leading ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandTilde(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
