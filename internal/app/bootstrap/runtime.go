package bootstrap

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	openai "github.com/sashabaranov/go-openai"

	appconfig "github.com/realtyflow/leadqual/internal/config"
	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/realtyflow/leadqual/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildPgxPool opens the Postgres connection pool.
func BuildPgxPool(ctx context.Context, cfg *appconfig.Config) (*pgxpool.Pool, error) {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		return nil, fmt.Errorf("bootstrap: DATABASE_URL is required")
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: failed to create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("bootstrap: database not reachable: %w", err)
	}
	return pool, nil
}

// BuildCompletionClients constructs the provider clients keyed the way the
// tier registry names them, plus the embedding client when the provider
// supports one.
func BuildCompletionClients(ctx context.Context, cfg *appconfig.Config) (map[string]llm.CompletionClient, llm.EmbeddingClient, error) {
	if cfg == nil {
		return nil, nil, fmt.Errorf("bootstrap: config is required")
	}

	clients := map[string]llm.CompletionClient{}
	var embedder llm.EmbeddingClient

	switch cfg.LLMProvider {
	case "openai":
		if strings.TrimSpace(cfg.OpenAIAPIKey) == "" {
			return nil, nil, fmt.Errorf("bootstrap: OPENAI_API_KEY is required for the openai provider")
		}
		api := openai.NewClient(cfg.OpenAIAPIKey)
		clients["openai"] = llm.NewOpenAIClient(api)
		embedder = llm.NewOpenAIEmbedder(api)
	case "bedrock":
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap: failed to load AWS config: %w", err)
		}
		clients["bedrock"] = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg))
	default:
		return nil, nil, fmt.Errorf("bootstrap: unknown LLM provider %q", cfg.LLMProvider)
	}
	return clients, embedder, nil
}

// BuildTierRegistry maps tier names to configured model IDs.
func BuildTierRegistry(cfg *appconfig.Config) llm.Registry {
	return llm.NewRegistry(cfg.LLMProvider, cfg.EconomyModelID, cfg.StandardModelID, cfg.PremiumModelID)
}
