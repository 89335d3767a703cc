package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	dir := writeConfig(t, `
server:
  mode: debug
database:
  driver: sqlite
jwt:
  secret: dev
storage:
  type: s3
`)
	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("port = %q", cfg.Server.Port)
	}
	if cfg.JWT.ExpireTime != 72*time.Hour {
		t.Fatalf("jwt expiry = %v", cfg.JWT.ExpireTime)
	}
	if cfg.AI.Model != "gpt-4o-mini" || cfg.AI.Timeout() != 60*time.Second {
		t.Fatalf("ai = %+v", cfg.AI)
	}
	if cfg.Analytics.CacheTTL() != 5*time.Minute {
		t.Fatalf("cache ttl = %v", cfg.Analytics.CacheTTL())
	}
	if cfg.RateLimit.MaxRequests != 600 || cfg.RateLimit.WindowMinutes != 1 {
		t.Fatalf("rate limit = %+v", cfg.RateLimit)
	}
	if !strings.HasSuffix(cfg.Path, "config.yaml") {
		t.Fatalf("path = %q", cfg.Path)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	dir := writeConfig(t, `
database:
  driver: sqlite
storage:
  type: s3
ai:
  api_key: from-file
`)
	t.Setenv("AI_API_KEY", "from-env")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.AI.APIKey != "from-env" || cfg.Server.Port != "9090" {
		t.Fatalf("env not applied: key=%q port=%q", cfg.AI.APIKey, cfg.Server.Port)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:    ServerConfig{Mode: "release"},
			Database:  DatabaseConfig{Driver: "postgres"},
			JWT:       JWTConfig{Secret: strings.Repeat("s", 32)},
			RateLimit: RateLimitConfig{MaxRequests: 10, WindowMinutes: 1},
		}
	}

	ok := base()
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	short := base()
	short.JWT.Secret = "short"
	if err := short.Validate(); err == nil {
		t.Fatal("short release secret accepted")
	}

	driver := base()
	driver.Database.Driver = "oracle"
	if err := driver.Validate(); err == nil {
		t.Fatal("unknown driver accepted")
	}

	limits := base()
	limits.RateLimit.MaxRequests = 0
	if err := limits.Validate(); err == nil {
		t.Fatal("zero rate limit accepted")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(t.TempDir()); err == nil {
		t.Fatal("LoadConfig() succeeded without a config file")
	}
}
