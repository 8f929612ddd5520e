package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("ENV", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LLM_PROVIDER", "")
	cfg := Load()
	if cfg.Port != "8080" {
		t.Fatalf("expected default port, got %s", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Fatalf("expected default env, got %s", cfg.Env)
	}
	if cfg.LLMProvider != "openai" {
		t.Fatalf("expected default provider openai, got %s", cfg.LLMProvider)
	}
	if cfg.PrimaryTier != "standard" || cfg.FallbackTier != "economy" {
		t.Fatalf("expected standard/economy tier defaults, got %s/%s", cfg.PrimaryTier, cfg.FallbackTier)
	}
	if cfg.CompletionTimeout != 30*time.Second {
		t.Fatalf("expected default completion timeout, got %s", cfg.CompletionTimeout)
	}
	if cfg.ClassifierRetries != 3 {
		t.Fatalf("expected default classifier retries, got %d", cfg.ClassifierRetries)
	}
	if cfg.ReplyMaxTokens != 400 {
		t.Fatalf("expected default reply max tokens, got %d", cfg.ReplyMaxTokens)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DATABASE_URL", "postgres://user@host/db")
	t.Setenv("LLM_PROVIDER", "Bedrock")
	t.Setenv("LLM_PRIMARY_TIER", "premium")
	t.Setenv("LLM_COMPLETION_TIMEOUT", "45s")
	t.Setenv("INTENT_CLASSIFIER_BACKOFF", "250ms")
	t.Setenv("TRANSCRIPT_TURNS_MAX", "60")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	cfg := Load()
	if cfg.Port != "9090" {
		t.Fatalf("expected override port, got %s", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://user@host/db" {
		t.Fatalf("expected database url override, got %s", cfg.DatabaseURL)
	}
	if cfg.LLMProvider != "bedrock" {
		t.Fatalf("expected provider lowered to bedrock, got %s", cfg.LLMProvider)
	}
	if cfg.PrimaryTier != "premium" {
		t.Fatalf("expected primary tier override, got %s", cfg.PrimaryTier)
	}
	if cfg.CompletionTimeout != 45*time.Second {
		t.Fatalf("expected completion timeout override, got %s", cfg.CompletionTimeout)
	}
	if cfg.ClassifierBackoff != 250*time.Millisecond {
		t.Fatalf("expected classifier backoff override, got %s", cfg.ClassifierBackoff)
	}
	if cfg.TranscriptTurnsMax != 60 {
		t.Fatalf("expected transcript cap override, got %d", cfg.TranscriptTurnsMax)
	}
	if len(cfg.CORSAllowedOrigins) != 2 || cfg.CORSAllowedOrigins[1] != "https://b.example" {
		t.Fatalf("expected parsed CORS origins, got %v", cfg.CORSAllowedOrigins)
	}
}

func TestGetEnvAsBoolAndInt(t *testing.T) {
	t.Setenv("SOME_BOOL", "true")
	t.Setenv("SOME_INT", "not-a-number")
	if !getEnvAsBool("SOME_BOOL", false) {
		t.Fatalf("expected true")
	}
	if got := getEnvAsInt("SOME_INT", 7); got != 7 {
		t.Fatalf("expected fallback 7, got %d", got)
	}
}
