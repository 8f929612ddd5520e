package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	LogLevel      string
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// LLM provider selection and tier mapping
	LLMProvider        string // "openai" or "bedrock"
	OpenAIAPIKey       string
	AWSRegion          string
	PrimaryTier        string
	FallbackTier       string
	EconomyModelID     string
	StandardModelID    string
	PremiumModelID     string
	EmbeddingModelID   string
	CompletionTimeout  time.Duration
	ClassifierRetries  int
	ClassifierBackoff  time.Duration
	ReplyMaxTokens     int
	TranscriptTurnsMax int

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		DatabaseURL:   getEnv("DATABASE_URL", ""),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		LLMProvider:        strings.ToLower(strings.TrimSpace(getEnv("LLM_PROVIDER", "openai"))),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		PrimaryTier:        getEnv("LLM_PRIMARY_TIER", "standard"),
		FallbackTier:       getEnv("LLM_FALLBACK_TIER", "economy"),
		EconomyModelID:     getEnv("LLM_ECONOMY_MODEL_ID", "gpt-4o-mini"),
		StandardModelID:    getEnv("LLM_STANDARD_MODEL_ID", "gpt-4o"),
		PremiumModelID:     getEnv("LLM_PREMIUM_MODEL_ID", "o3-mini"),
		EmbeddingModelID:   getEnv("LLM_EMBEDDING_MODEL_ID", "text-embedding-3-small"),
		CompletionTimeout:  getEnvAsDuration("LLM_COMPLETION_TIMEOUT", 30*time.Second),
		ClassifierRetries:  getEnvAsInt("INTENT_CLASSIFIER_RETRIES", 3),
		ClassifierBackoff:  getEnvAsDuration("INTENT_CLASSIFIER_BACKOFF", 500*time.Millisecond),
		ReplyMaxTokens:     getEnvAsInt("REPLY_MAX_TOKENS", 400),
		TranscriptTurnsMax: getEnvAsInt("TRANSCRIPT_TURNS_MAX", 40),

		CORSAllowedOrigins: splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "")),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
