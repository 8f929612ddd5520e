package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/realtyflow/leadqual/internal/api/router"
	"github.com/realtyflow/leadqual/internal/app/bootstrap"
	appconfig "github.com/realtyflow/leadqual/internal/config"
	"github.com/realtyflow/leadqual/internal/conversation"
	"github.com/realtyflow/leadqual/internal/intent"
	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/internal/leads"
	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/realtyflow/leadqual/internal/observability/metrics"
	"github.com/realtyflow/leadqual/internal/qualification"
	"github.com/realtyflow/leadqual/internal/scoring"
	"github.com/realtyflow/leadqual/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting leadqual API server",
		"env", cfg.Env,
		"port", cfg.Port,
		"llm_provider", cfg.LLMProvider,
	)

	ctx := context.Background()

	pool, err := bootstrap.BuildPgxPool(ctx, cfg)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Error("redis is required")
		os.Exit(1)
	}
	defer redisClient.Close()

	clients, embedder, err := bootstrap.BuildCompletionClients(ctx, cfg)
	if err != nil {
		logger.Error("failed to build LLM clients", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	appMetrics := metrics.New(registry)

	// Token ledger: every model call in the process is accounted here.
	usageLedger := ledger.New(ledger.NewPostgresStore(pool), ledger.DefaultRates(), logger, appMetrics)
	usageHandler := ledger.NewHandler(usageLedger, logger)

	orchestratorOpts := []llm.OrchestratorOption{
		llm.WithObserver(appMetrics),
		llm.WithTimeout(cfg.CompletionTimeout),
	}
	if embedder != nil {
		orchestratorOpts = append(orchestratorOpts, llm.WithEmbedder(embedder, cfg.EmbeddingModelID))
	}
	orchestrator := llm.NewOrchestrator(
		clients,
		bootstrap.BuildTierRegistry(cfg),
		cfg.PrimaryTier,
		cfg.FallbackTier,
		usageLedger,
		logger,
		orchestratorOpts...,
	)

	classifier := intent.NewClassifier(orchestrator, logger, cfg.ClassifierRetries, cfg.ClassifierBackoff)
	extractor := qualification.NewExtractor(orchestrator, logger)
	memoryStore := qualification.NewRedisMemoryStore(redisClient)

	scoringRepo := scoring.NewPostgresRepository(pool)
	scoringHandler := scoring.NewHandler(scoringRepo, logger)
	leadsRepo := leads.NewPostgresRepository(pool)

	engine := conversation.NewEngine(
		conversation.NewPostgresStateStore(pool),
		conversation.NewRedisTranscriptStore(redisClient),
		memoryStore,
		classifier,
		extractor,
		scoring.NewEngine(),
		scoringRepo,
		leadsRepo,
		orchestrator,
		logger,
		conversation.WithTurnObserver(appMetrics),
		conversation.WithReplyMaxTokens(int32(cfg.ReplyMaxTokens)),
		conversation.WithTranscriptCap(cfg.TranscriptTurnsMax),
	)
	conversationHandler := conversation.NewHandler(engine, logger)

	r := router.New(&router.Config{
		Logger:              logger,
		ConversationHandler: conversationHandler,
		ScoringHandler:      scoringHandler,
		UsageHandler:        usageHandler,
		MetricsHandler:      promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
