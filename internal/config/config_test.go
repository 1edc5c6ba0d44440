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
	if cfg.MaxShortTermMessages != 50 {
		t.Errorf("expected default short-term cap 50, got %d", cfg.MaxShortTermMessages)
	}
	if cfg.ContextRetentionDays != 1 {
		t.Errorf("expected default retention 1 day, got %d", cfg.ContextRetentionDays)
	}
	if cfg.MatchThreshold != 0.3 {
		t.Errorf("expected default match threshold 0.3, got %v", cfg.MatchThreshold)
	}
	if cfg.LevelConfidenceGate != 0.8 {
		t.Errorf("expected default level gate 0.8, got %v", cfg.LevelConfidenceGate)
	}
	if cfg.SentimentCacheTTL != 5*time.Minute {
		t.Errorf("expected default sentiment cache TTL 5m, got %v", cfg.SentimentCacheTTL)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_SHORT_TERM_MESSAGES", "20")
	t.Setenv("CLEANUP_INTERVAL", "5m")
	t.Setenv("MATCH_THRESHOLD", "0.5")
	t.Setenv("REDIS_TLS", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://kiosk.local, http://localhost:5173")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.MaxShortTermMessages != 20 {
		t.Errorf("expected short-term cap 20, got %d", cfg.MaxShortTermMessages)
	}
	if cfg.CleanupInterval != 5*time.Minute {
		t.Errorf("expected cleanup interval 5m, got %v", cfg.CleanupInterval)
	}
	if cfg.MatchThreshold != 0.5 {
		t.Errorf("expected match threshold 0.5, got %v", cfg.MatchThreshold)
	}
	if !cfg.RedisTLS {
		t.Error("expected redis TLS enabled")
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[0] != "http://kiosk.local" {
		t.Errorf("unexpected CORS origins: %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidValuesFallBackToDefaults(t *testing.T) {
	t.Setenv("MAX_SHORT_TERM_MESSAGES", "not-a-number")
	t.Setenv("CLEANUP_INTERVAL", "soon")
	t.Setenv("MATCH_THRESHOLD", "high")

	cfg := Load()

	if cfg.MaxShortTermMessages != 50 {
		t.Errorf("expected fallback short-term cap 50, got %d", cfg.MaxShortTermMessages)
	}
	if cfg.CleanupInterval != 30*time.Minute {
		t.Errorf("expected fallback cleanup interval 30m, got %v", cfg.CleanupInterval)
	}
	if cfg.MatchThreshold != 0.3 {
		t.Errorf("expected fallback match threshold 0.3, got %v", cfg.MatchThreshold)
	}
}
