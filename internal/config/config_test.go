package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestApplyDefaults_FillsEverySetting(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Server.Port != 8000 {
		t.Errorf("expected default port 8000, got %d", cfg.Server.Port)
	}
	if cfg.Vendors.Timeout != 2*time.Second {
		t.Errorf("expected 2s vendor timeout, got %v", cfg.Vendors.Timeout)
	}
	if cfg.Vendors.RetryAttempts != 3 || cfg.Vendors.RetryDelay != 100*time.Millisecond {
		t.Errorf("unexpected retry defaults: %d attempts, %v delay", cfg.Vendors.RetryAttempts, cfg.Vendors.RetryDelay)
	}
	if cfg.Breaker.FailureThreshold != 3 || cfg.Breaker.Cooldown != 30*time.Second {
		t.Errorf("unexpected breaker defaults: %+v", cfg.Breaker)
	}
	if cfg.Freshness != 10*time.Minute {
		t.Errorf("expected 10m freshness, got %v", cfg.Freshness)
	}
	if cfg.Cache.TTL != 120*time.Second {
		t.Errorf("expected 120s cache TTL, got %v", cfg.Cache.TTL)
	}
	if cfg.RateLimit.Limit != 60 || cfg.RateLimit.Window != 60*time.Second {
		t.Errorf("unexpected rate limit defaults: %+v", cfg.RateLimit)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected development environment, got %s", cfg.Environment)
	}
}

func TestApplyDefaults_DevelopmentGetsLocalKey(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "local-dev-key" {
		t.Errorf("expected local dev key, got %v", cfg.Auth.APIKeys)
	}
}

func TestApplyDefaults_ProductionRequiresKeys(t *testing.T) {
	cfg := Config{Environment: "production"}
	cfg.ApplyDefaults()

	if len(cfg.Auth.APIKeys) != 0 {
		t.Fatalf("production must not get a default key, got %v", cfg.Auth.APIKeys)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure without API keys")
	}
}

func TestValidate_RejectsUnknownEnvironment(t *testing.T) {
	cfg := Config{Environment: "sandbox"}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Error("expected validation failure for unknown environment")
	}
}

func TestLoad_ReadsFileAndFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	content := []byte(`
environment: staging
server:
  port: 9000
auth:
  api_keys:
    - staging-key
vendors:
  timeout: 5s
`)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("loading config: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected staging, got %s", cfg.Environment)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Vendors.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout override, got %v", cfg.Vendors.Timeout)
	}
	// Everything unset falls back to defaults.
	if cfg.Cache.TTL != 120*time.Second {
		t.Errorf("expected default cache TTL, got %v", cfg.Cache.TTL)
	}
}

func TestLoad_MissingExplicitFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}
}
