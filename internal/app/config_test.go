package app

import (
	"testing"
	"time"

	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "ACCESS_TOKEN_TTL", "APP_TIMEZONE", "REDIS_ADDR", "CORS_ALLOWED_ORIGINS", "OTEL_SAMPLER_RATIO"} {
		t.Setenv(k, "")
	}
	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "8080" {
		t.Fatalf("Port: want=%q got=%q", "8080", cfg.Port)
	}
	if cfg.AccessTokenTTL != time.Hour {
		t.Fatalf("AccessTokenTTL: want=%v got=%v", time.Hour, cfg.AccessTokenTTL)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("Timezone: want=UTC got=%q", cfg.Timezone)
	}
	if cfg.RedisAddr != "" || cfg.AllowedOrigins != nil {
		t.Fatalf("expected no redis and default origins, got %q %v", cfg.RedisAddr, cfg.AllowedOrigins)
	}
	if cfg.Otel.SampleRatio != 1 {
		t.Fatalf("SampleRatio: want=1 got=%v", cfg.Otel.SampleRatio)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ACCESS_TOKEN_TTL", "900")
	t.Setenv("APP_TIMEZONE", "Asia/Kolkata")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, ,https://b.example.com")
	t.Setenv("OTEL_SAMPLER_RATIO", "0.25")
	t.Setenv("BATCH_LOCK_TTL", "3s")

	cfg := LoadConfig(logger.Nop())
	if cfg.Port != "9090" {
		t.Fatalf("Port: want=9090 got=%q", cfg.Port)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("AccessTokenTTL: want=15m got=%v", cfg.AccessTokenTTL)
	}
	if cfg.Timezone != "Asia/Kolkata" {
		t.Fatalf("Timezone: got=%q", cfg.Timezone)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example.com" {
		t.Fatalf("AllowedOrigins: got=%v", cfg.AllowedOrigins)
	}
	if cfg.Otel.SampleRatio != 0.25 {
		t.Fatalf("SampleRatio: want=0.25 got=%v", cfg.Otel.SampleRatio)
	}
	if cfg.BatchLockTTL != 3*time.Second {
		t.Fatalf("BatchLockTTL: want=3s got=%v", cfg.BatchLockTTL)
	}
}
