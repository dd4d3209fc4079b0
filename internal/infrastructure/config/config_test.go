package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/payledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")

	cfg, err := config.LoadFiles()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}
	if cfg.DatabaseLockTimeout != 5*time.Second {
		t.Fatalf("expected default lock timeout 5s, got %s", cfg.DatabaseLockTimeout)
	}
	if cfg.RateLimitBurst != 100 {
		t.Fatalf("expected default burst 100, got %d", cfg.RateLimitBurst)
	}
	if cfg.RedisPoolSize != 20 || cfg.RedisDialTimeout != 5*time.Second {
		t.Fatalf("unexpected redis defaults: pool=%d dial=%s", cfg.RedisPoolSize, cfg.RedisDialTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("TX_MAX_RETRIES", "7")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RUN_MIGRATIONS", "false")

	cfg, err := config.LoadFiles()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}
	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}
	if cfg.HTTPPort != "9090" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}
	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}
	if cfg.TxMaxRetries != 7 || cfg.RateLimitRPS != 2.5 || cfg.RunMigrations {
		t.Fatalf("unexpected overrides: retries=%d rps=%v migrate=%v", cfg.TxMaxRetries, cfg.RateLimitRPS, cfg.RunMigrations)
	}
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("OUTBOX_BATCH_SIZE=7\nLOG_LEVEL=debug\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	// The process environment wins over the file.
	t.Setenv("LOG_LEVEL", "warn")
	t.Cleanup(func() { os.Unsetenv("OUTBOX_BATCH_SIZE") })

	cfg, err := config.LoadFiles(path, filepath.Join(t.TempDir(), "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.OutboxBatchSize != 7 {
		t.Fatalf("expected batch size from file, got %d", cfg.OutboxBatchSize)
	}
	if cfg.LogLevel != "warn" {
		t.Fatalf("expected environment to win, got %s", cfg.LogLevel)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("HTTP_READ_TIMEOUT", "not-a-duration")

	if _, err := config.LoadFiles(); err == nil {
		t.Fatalf("expected error for invalid duration")
	}
}
