package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// validEnv sets the minimum required env vars for a valid config.
func validEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	t.Setenv("BSKY_IDENTIFIER", "aggregator.bsky.social")
	t.Setenv("BSKY_APP_PASSWORD", "xxxx-xxxx-xxxx-xxxx")
}

func writeYAML(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write yaml: %v", err)
	}
	return path
}

const validYAML = `
server:
  host: "127.0.0.1"
  port: 9090

database:
  dsn: "postgres://u:p@localhost:5432/testdb"
  max_conns: 10

bluesky:
  service_url: "https://bsky.social"
  identifier: "aggregator.bsky.social"
  app_password: "xxxx-xxxx-xxxx-xxxx"

poll:
  interval: "90s"
  max_pages: 3
  page_size: 25

log:
  level: "debug"
  format: "text"
`

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("server.port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Poll.Interval != 90*time.Second {
		t.Errorf("poll.interval: got %v, want 90s", cfg.Poll.Interval)
	}
	if cfg.Poll.PageSize != 25 {
		t.Errorf("poll.page_size: got %d, want 25", cfg.Poll.PageSize)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log.level: got %q, want debug", cfg.Log.Level)
	}
}

func TestLoad_EnvOnlyWithDefaults(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "")
	// Run from a directory without a config.yaml.
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Bluesky.ServiceURL != "https://bsky.social" {
		t.Errorf("default service_url: got %q", cfg.Bluesky.ServiceURL)
	}
	if cfg.Poll.PageSize != 50 {
		t.Errorf("default page_size: got %d, want 50", cfg.Poll.PageSize)
	}
	if cfg.Jetstream.Enabled {
		t.Error("jetstream should default to disabled")
	}
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeYAML(t, dir, validYAML)
	t.Setenv("CONFIG_PATH", path)
	t.Setenv("SERVER_PORT", "7070")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("server.port: got %d, want env override 7070", cfg.Server.Port)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("DATABASE_DSN", "postgres://u:p@localhost:5432/testdb")
	// No BSKY_IDENTIFIER / BSKY_APP_PASSWORD.
	t.Chdir(t.TempDir())

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing required fields, got nil")
	}
}

func TestLoad_ExplicitPathMissingFile(t *testing.T) {
	validEnv(t)
	t.Setenv("CONFIG_PATH", "/nonexistent/config.yaml")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing explicit config file, got nil")
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := func() *Config {
		return &Config{
			Bluesky: BlueskyConfig{
				ServiceURL:  "https://bsky.social",
				Identifier:  "aggregator.bsky.social",
				AppPassword: "pw",
			},
			Poll: PollConfig{Interval: time.Minute, MaxPages: 5, PageSize: 50},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad service url", func(c *Config) { c.Bluesky.ServiceURL = "ftp://x" }, "service_url"},
		{"blank identifier", func(c *Config) { c.Bluesky.Identifier = "  " }, "identifier"},
		{"zero interval", func(c *Config) { c.Poll.Interval = 0 }, "poll.interval"},
		{"zero pages", func(c *Config) { c.Poll.MaxPages = 0 }, "max_pages"},
		{"oversized page", func(c *Config) { c.Poll.PageSize = 101 }, "page_size"},
		{"bad jetstream url", func(c *Config) {
			c.Jetstream = JetstreamConfig{Enabled: true, URL: "https://not-ws"}
		}, "jetstream.url"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %v does not mention %q", err, tt.wantErr)
			}
		})
	}
}
