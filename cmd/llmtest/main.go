// Command llmtest sends one smoke-test conversation through the orchestrator
// using the configured provider and prints the reply plus the ledger records
// it produced. Useful for verifying credentials and tier mapping.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/realtyflow/leadqual/internal/app/bootstrap"
	appconfig "github.com/realtyflow/leadqual/internal/config"
	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/realtyflow/leadqual/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := appconfig.Load()
	logger := logging.New("debug")

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	clients, _, err := bootstrap.BuildCompletionClients(ctx, cfg)
	if err != nil {
		log.Fatalf("build clients: %v", err)
	}

	store := ledger.NewInMemoryStore()
	usageLedger := ledger.New(store, ledger.DefaultRates(), logger, nil)

	orchestrator := llm.NewOrchestrator(
		clients,
		bootstrap.BuildTierRegistry(cfg),
		cfg.PrimaryTier,
		cfg.FallbackTier,
		usageLedger,
		logger,
		llm.WithTimeout(cfg.CompletionTimeout),
	)

	resp, err := orchestrator.Complete(ctx, llm.Request{
		Category: ledger.CategoryReply,
		System:   []string{"You are a friendly real-estate assistant. Keep responses brief."},
		Messages: []llm.ChatMessage{
			{Role: llm.ChatRoleUser, Content: "Hi, I'm thinking about buying a condo downtown. Where do I start?"},
		},
		MaxTokens:   200,
		Temperature: 0.7,
	})
	if err != nil {
		log.Fatalf("completion failed: %v", err)
	}

	fmt.Println("Reply:")
	fmt.Println("  " + resp.Text)
	fmt.Printf("Usage: in=%d cached=%d out=%d\n",
		resp.Usage.InputTokens, resp.Usage.CachedTokens, resp.Usage.OutputTokens)

	fmt.Println("Ledger records:")
	for _, rec := range store.Records() {
		fmt.Printf("  tier=%s model=%s category=%s success=%t fallback=%t tokens=%d cost=$%.6f\n",
			rec.Tier, rec.Model, rec.Category, rec.Success, rec.Fallback, rec.TotalTokens, rec.CostUSD)
	}
}
