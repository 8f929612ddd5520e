package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrCompletionFailed indicates both the primary and fallback tiers failed.
// The ledger already holds a record for each failed attempt when this is
// returned.
var ErrCompletionFailed = errors.New("llm: completion failed")

// estimateCharsPerToken is the documented estimate applied when a failed call
// returns no provider usage figure.
const estimateCharsPerToken = 4

// Request is one logical completion operation. The orchestrator owns tier
// selection, parameter shaping, fallback, and accounting; callers only say
// what they want and who is asking.
type Request struct {
	Category        ledger.Category
	System          []string
	Messages        []ChatMessage
	MaxTokens       int32
	Temperature     float32 // negative leaves the provider default
	ReasoningEffort string
	JSONResponse    bool
	Attribution     ledger.Attribution
}

// Observer receives per-attempt metrics.
type Observer interface {
	ObserveModelCall(tier string, category string, success bool, fallback bool, seconds float64)
}

// Orchestrator is the single point through which every completion-service and
// embedding-service invocation flows. No component may call a provider client
// directly.
type Orchestrator struct {
	clients        map[string]CompletionClient
	embedder       EmbeddingClient
	registry       Registry
	primaryTier    string
	fallbackTier   string
	embeddingModel string
	recorder       ledger.Recorder
	logger         *logging.Logger
	observer       Observer
	timeout        time.Duration
	tracer         trace.Tracer
}

// OrchestratorOption configures the orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithEmbedder attaches an embedding client accounted through the same ledger.
func WithEmbedder(embedder EmbeddingClient, model string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.embedder = embedder
		o.embeddingModel = model
	}
}

// WithObserver attaches per-attempt metrics.
func WithObserver(observer Observer) OrchestratorOption {
	return func(o *Orchestrator) {
		o.observer = observer
	}
}

// WithTimeout bounds each provider attempt. Zero disables the bound.
func WithTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.timeout = timeout
	}
}

// NewOrchestrator wires tier routing around the supplied provider clients.
// clients is keyed by provider name as used in the registry specs.
func NewOrchestrator(clients map[string]CompletionClient, registry Registry, primaryTier, fallbackTier string, recorder ledger.Recorder, logger *logging.Logger, opts ...OrchestratorOption) *Orchestrator {
	if len(clients) == 0 {
		panic("llm: at least one completion client required")
	}
	if recorder == nil {
		panic("llm: ledger recorder required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	o := &Orchestrator{
		clients:      clients,
		registry:     registry,
		primaryTier:  primaryTier,
		fallbackTier: fallbackTier,
		recorder:     recorder,
		logger:       logger,
		timeout:      30 * time.Second,
		tracer:       otel.Tracer("leadqual.internal.llm"),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Complete invokes the primary tier, falling back to the secondary tier with
// adapted parameters when the primary fails. Exactly one ledger record is
// written per attempt, success or failure.
func (o *Orchestrator) Complete(ctx context.Context, req Request) (CompletionResponse, error) {
	ctx, span := o.tracer.Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("leadqual.category", string(req.Category)),
		attribute.String("leadqual.conversation_id", req.Attribution.ConversationID),
	)

	primary, err := o.registry.Resolve(o.primaryTier)
	if err != nil {
		span.RecordError(err)
		return CompletionResponse{}, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	resp, primaryErr := o.attempt(ctx, req, primary, false)
	if primaryErr == nil {
		return resp, nil
	}

	o.logger.Warn("primary model tier failed, attempting fallback",
		"tier", primary.Tier,
		"category", string(req.Category),
		"error", primaryErr.Error(),
		"fallback_tier", o.fallbackTier,
	)

	fallback, err := o.registry.Resolve(o.fallbackTier)
	if err != nil || fallback.Tier == primary.Tier {
		span.RecordError(primaryErr)
		return CompletionResponse{}, fmt.Errorf("%w: %v", ErrCompletionFailed, primaryErr)
	}

	resp, fallbackErr := o.attempt(ctx, req, fallback, true)
	if fallbackErr != nil {
		o.logger.Error("fallback model tier also failed",
			"primary_tier", primary.Tier,
			"fallback_tier", fallback.Tier,
			"category", string(req.Category),
			"primary_error", primaryErr.Error(),
			"fallback_error", fallbackErr.Error(),
		)
		span.RecordError(fallbackErr)
		return CompletionResponse{}, fmt.Errorf("%w: primary: %v; fallback: %v", ErrCompletionFailed, primaryErr, fallbackErr)
	}

	o.logger.Info("fallback model tier succeeded after primary failure",
		"fallback_tier", fallback.Tier,
		"category", string(req.Category),
	)
	return resp, nil
}

// attempt runs one provider call and always writes its ledger record.
func (o *Orchestrator) attempt(ctx context.Context, req Request, spec Spec, fallback bool) (CompletionResponse, error) {
	client, ok := o.clients[spec.Provider]
	if !ok {
		return CompletionResponse{}, fmt.Errorf("llm: no client for provider %q", spec.Provider)
	}

	creq := shapeRequest(req, spec)

	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := client.Complete(callCtx, creq)
	latency := time.Since(start)

	rec := ledger.InvocationRecord{
		Tier:        spec.Tier,
		Model:       spec.ModelID,
		Category:    req.Category,
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		Fallback:    fallback,
		Attribution: req.Attribution,
	}
	if err == nil {
		rec.PromptTokens = resp.Usage.InputTokens
		rec.CachedTokens = resp.Usage.CachedTokens
		rec.CompletionTokens = resp.Usage.OutputTokens
		rec.TotalTokens = resp.Usage.TotalTokens
	} else {
		rec.PromptTokens = estimatePromptTokens(creq)
		rec.EstimatedUsage = true
	}
	o.recorder.Record(ctx, rec)

	if o.observer != nil {
		o.observer.ObserveModelCall(spec.Tier, string(req.Category), err == nil, fallback, latency.Seconds())
	}

	return resp, err
}

// Embed produces an embedding vector, accounted with category "embedding".
func (o *Orchestrator) Embed(ctx context.Context, input string, attr ledger.Attribution) ([]float32, error) {
	if o.embedder == nil {
		return nil, errors.New("llm: no embedding client configured")
	}

	ctx, span := o.tracer.Start(ctx, "llm.embed")
	defer span.End()

	callCtx := ctx
	if o.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	start := time.Now()
	vector, usage, err := o.embedder.Embed(callCtx, o.embeddingModel, input)
	latency := time.Since(start)

	rec := ledger.InvocationRecord{
		Tier:         "embedding",
		Model:        o.embeddingModel,
		Category:     ledger.CategoryEmbedding,
		PromptTokens: usage.InputTokens,
		TotalTokens:  usage.TotalTokens,
		LatencyMs:    latency.Milliseconds(),
		Success:      err == nil,
		Attribution:  attr,
	}
	if err != nil {
		rec.PromptTokens = int32(len(input) / estimateCharsPerToken)
		rec.TotalTokens = rec.PromptTokens
		rec.EstimatedUsage = true
	}
	o.recorder.Record(ctx, rec)

	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return vector, nil
}

// shapeRequest adapts the logical request to the tier's parameter family:
// drop knobs the family rejects, carry the ones it requires.
func shapeRequest(req Request, spec Spec) CompletionRequest {
	creq := CompletionRequest{
		Model:        spec.ModelID,
		Family:       spec.Family,
		System:       req.System,
		Messages:     req.Messages,
		MaxTokens:    req.MaxTokens,
		JSONResponse: req.JSONResponse,
	}
	switch spec.Family {
	case FamilyReasoning:
		effort := req.ReasoningEffort
		if effort == "" {
			effort = "low"
		}
		creq.ReasoningEffort = effort
		creq.Temperature = -1
	default:
		creq.Temperature = req.Temperature
	}
	return creq
}

// estimatePromptTokens approximates input tokens from prompt length when the
// provider reports no usage for a failed attempt.
func estimatePromptTokens(req CompletionRequest) int32 {
	chars := 0
	for _, block := range req.System {
		chars += len(block)
	}
	for _, msg := range req.Messages {
		chars += len(msg.Content)
	}
	return int32(chars / estimateCharsPerToken)
}
