package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Benkendorfer/HEP-paper-graph/internal/ratelimit"
)

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/hepgraph/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "hepgraph", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.yml"), map[string]string{})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if cfg.MaxRequests != 15 || cfg.TimeWindow != 5*time.Second {
		t.Errorf("limits = %d per %s, want 15 per 5s", cfg.MaxRequests, cfg.TimeWindow)
	}
	if cfg.BaseURL != DefaultBaseURL || !cfg.UseCache || cfg.Depth != 1 {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Limiter != ratelimit.ModeWindow {
		t.Errorf("Limiter = %q, want %q", cfg.Limiter, ratelimit.ModeWindow)
	}
}

func TestLoadFrom_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `cache_dir: /tmp/hep-cache
max_requests: 10
time_window: 2s
limiter: bucket
use_cache: false
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path, map[string]string{
		"HEPGRAPH_MAX_REQUESTS": "7",
		"HEPGRAPH_DEPTH":        "2",
		"UNRELATED":             "x",
	})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if cfg.CacheDir != "/tmp/hep-cache" {
		t.Errorf("CacheDir = %q, want from file", cfg.CacheDir)
	}
	if cfg.TimeWindow != 2*time.Second {
		t.Errorf("TimeWindow = %s, want 2s", cfg.TimeWindow)
	}
	if cfg.MaxRequests != 7 {
		t.Errorf("MaxRequests = %d, want env override 7", cfg.MaxRequests)
	}
	if cfg.Depth != 2 {
		t.Errorf("Depth = %d, want 2", cfg.Depth)
	}
	if cfg.UseCache {
		t.Error("UseCache = true, want false from file")
	}
	if cfg.Limiter != ratelimit.ModeBucket {
		t.Errorf("Limiter = %q, want bucket", cfg.Limiter)
	}
	// Fields absent from both layers keep their defaults.
	if cfg.RequestTimeout != DefaultRequestTimeout {
		t.Errorf("RequestTimeout = %s, want default", cfg.RequestTimeout)
	}
}

func TestLoadFrom_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	if err := os.WriteFile(path, []byte("max_requests: [\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path, map[string]string{}); err == nil {
		t.Error("LoadFrom() expected error for malformed YAML")
	}
}

func TestLoadFrom_TildeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	cfg, err := LoadFrom("", map[string]string{"HEPGRAPH_CACHE_DIR": "~/hep"})
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if want := filepath.Join(home, "hep"); cfg.CacheDir != want {
		t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero max requests", func(c *Config) { c.MaxRequests = 0 }},
		{"negative window", func(c *Config) { c.TimeWindow = -time.Second }},
		{"zero timeout", func(c *Config) { c.RequestTimeout = 0 }},
		{"unknown limiter", func(c *Config) { c.Limiter = "leaky" }},
		{"empty base url", func(c *Config) { c.BaseURL = "" }},
		{"zero depth", func(c *Config) { c.Depth = 0 }},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }},
	}

	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestExpandTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	tests := []struct {
		in, want string
	}{
		{"~/cache", filepath.Join(home, "cache")},
		{"/abs/path", "/abs/path"},
		{"relative", "relative"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ExpandTilde(tt.in); got != tt.want {
			t.Errorf("ExpandTilde(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
