package infra

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != "8080" {
		t.Fatalf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.OpenAIImageModel != "gpt-image-1" || cfg.OpenAIVisionModel != "gpt-4o" {
		t.Fatalf("models = %q/%q", cfg.OpenAIImageModel, cfg.OpenAIVisionModel)
	}
	if cfg.SupabaseBucket != "ad-images" {
		t.Fatalf("SupabaseBucket = %q", cfg.SupabaseBucket)
	}
	if cfg.HTTPWriteTimeout != 120*time.Second {
		t.Fatalf("HTTPWriteTimeout = %v", cfg.HTTPWriteTimeout)
	}
	if cfg.RateLimitPerMin != 30 {
		t.Fatalf("RateLimitPerMin = %d", cfg.RateLimitPerMin)
	}
}

func TestLoadConfigRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("LoadConfig() without OPENAI_API_KEY succeeded, want error")
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("PORT", "9999")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "5")
	t.Setenv("HTTP_READ_TIMEOUT_SECONDS", "not-a-number")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Port != "9999" {
		t.Fatalf("Port = %q, want 9999", cfg.Port)
	}
	if cfg.RateLimitPerMin != 5 {
		t.Fatalf("RateLimitPerMin = %d, want 5", cfg.RateLimitPerMin)
	}
	if cfg.HTTPReadTimeout != 30*time.Second {
		t.Fatalf("HTTPReadTimeout = %v, want fallback 30s", cfg.HTTPReadTimeout)
	}
}
