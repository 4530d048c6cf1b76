package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iho/storeledger/internal/domain"
	"github.com/iho/storeledger/internal/infrastructure/config"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL == "" {
		t.Fatalf("expected default database URL to be set")
	}

	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default HTTP port 8080, got %s", cfg.HTTPPort)
	}

	if cfg.JWTExpiration != 7*24*time.Hour {
		t.Fatalf("expected 7 day token lifetime, got %s", cfg.JWTExpiration)
	}

	if cfg.Base() != domain.CurrencyRUB {
		t.Fatalf("expected RUB base currency, got %s", cfg.Base())
	}

	if cfg.ExchangeRateFallback != 95.5 {
		t.Fatalf("expected fallback rate 95.50, got %v", cfg.ExchangeRateFallback)
	}

	if cfg.ExchangeRateTimeout != 5*time.Second {
		t.Fatalf("expected 5s rate timeout, got %s", cfg.ExchangeRateTimeout)
	}

	if cfg.Location() != time.UTC {
		t.Fatalf("expected UTC report location, got %s", cfg.Location())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://example")
	t.Setenv("REDIS_URL", "redis://example")
	t.Setenv("HTTP_PORT", "9091")
	t.Setenv("DATABASE_TIMEOUT", "45s")
	t.Setenv("JWT_SECRET", "top-secret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com,https://staging.example.com")
	t.Setenv("REPORT_TIMEZONE", "Europe/Moscow")
	t.Setenv("EXCHANGE_RATE_FALLBACK", "90.25")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}

	if cfg.DatabaseURL != "postgres://example" {
		t.Fatalf("expected custom database URL, got %s", cfg.DatabaseURL)
	}

	if cfg.RedisURL != "redis://example" {
		t.Fatalf("expected custom redis URL, got %s", cfg.RedisURL)
	}

	if cfg.HTTPPort != "9091" {
		t.Fatalf("expected HTTP port override, got %s", cfg.HTTPPort)
	}

	if cfg.DatabaseTimeout != 45*time.Second {
		t.Fatalf("expected database timeout override, got %s", cfg.DatabaseTimeout)
	}

	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected two CORS origins, got %v", cfg.CORSAllowedOrigins)
	}

	if cfg.Location().String() != "Europe/Moscow" {
		t.Fatalf("expected Moscow report location, got %s", cfg.Location())
	}

	if cfg.ExchangeRateFallback != 90.25 {
		t.Fatalf("expected fallback override, got %v", cfg.ExchangeRateFallback)
	}
}

func TestLoadInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"duration", "HTTP_READ_TIMEOUT", "not-a-duration"},
		{"base currency", "BASE_CURRENCY", "EUR"},
		{"same currencies", "FOREIGN_CURRENCY", "RUB"},
		{"timezone", "REPORT_TIMEZONE", "Mars/Olympus"},
		{"fallback rate", "EXCHANGE_RATE_FALLBACK", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestLoadWithDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("METRICS_PORT=9300\nHTTP_PORT=7000\n"), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}

	t.Setenv("HTTP_PORT", "8181")
	t.Setenv("METRICS_PORT", "")
	os.Unsetenv("METRICS_PORT")

	cfg, err := config.LoadWithDotEnv(path)
	if err != nil {
		t.Fatalf("unexpected error loading config: %v", err)
	}
	t.Cleanup(func() { os.Unsetenv("METRICS_PORT") })

	if cfg.MetricsPort != "9300" {
		t.Fatalf("expected metrics port from .env, got %s", cfg.MetricsPort)
	}

	if cfg.HTTPPort != "8181" {
		t.Fatalf("expected environment to win over .env, got %s", cfg.HTTPPort)
	}

	if _, err := config.LoadWithDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("expected missing .env to be ignored, got %v", err)
	}
}
