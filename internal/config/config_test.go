package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
	if cfg.Timezone != "Europe/Madrid" {
		t.Errorf("expected default timezone Europe/Madrid, got %s", cfg.Timezone)
	}
	if cfg.EmailProvider != "stub" {
		t.Errorf("expected default email provider stub, got %s", cfg.EmailProvider)
	}
	if cfg.ReminderRunAt != "08:00" {
		t.Errorf("expected default reminder run time 08:00, got %s", cfg.ReminderRunAt)
	}
	if cfg.ReminderLockTTL != 48*time.Hour {
		t.Errorf("expected default reminder lock TTL 48h, got %s", cfg.ReminderLockTTL)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("EMAIL_PROVIDER", "SendGrid")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("REMINDER_LOCK_TTL", "24h")
	t.Setenv("RATE_LIMIT_PER_SEC", "2.5")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.EmailProvider != "sendgrid" {
		t.Errorf("expected provider normalized to sendgrid, got %s", cfg.EmailProvider)
	}
	if !cfg.RedisTLS {
		t.Error("expected RedisTLS true")
	}
	if cfg.ReminderLockTTL != 24*time.Hour {
		t.Errorf("expected lock TTL 24h, got %s", cfg.ReminderLockTTL)
	}
	if cfg.RateLimitPerSec != 2.5 {
		t.Errorf("expected rate limit 2.5, got %f", cfg.RateLimitPerSec)
	}
}

func TestCORSAllowedOriginsParsing(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://admin.example.com, https://staging.example.com ,")

	cfg := Load()

	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Fatalf("expected 2 origins, got %d: %v", len(cfg.CORSAllowedOrigins), cfg.CORSAllowedOrigins)
	}
	if cfg.CORSAllowedOrigins[0] != "https://admin.example.com" {
		t.Errorf("unexpected first origin %q", cfg.CORSAllowedOrigins[0])
	}
}
