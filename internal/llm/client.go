package llm

import "context"

const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is an internal message representation that can include system prompts.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type TokenUsage struct {
	InputTokens  int32
	CachedTokens int32
	OutputTokens int32
	TotalTokens  int32
}

// CompletionRequest is the provider-level request shape. Parameter fields are
// interpreted per the model's parameter family: sampling models read
// Temperature/TopP, reasoning models read ReasoningEffort/Verbosity.
type CompletionRequest struct {
	Model           string
	Family          ParamFamily
	System          []string
	Messages        []ChatMessage
	MaxTokens       int32
	Temperature     float32
	TopP            float32
	ReasoningEffort string
	Verbosity       string
	JSONResponse    bool
}

type CompletionResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// CompletionClient is one hosted completion provider. All traffic to a
// provider goes through the Orchestrator, never through a client directly.
type CompletionClient interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// EmbeddingClient is the hosted embedding provider contract.
type EmbeddingClient interface {
	Embed(ctx context.Context, model string, input string) ([]float32, TokenUsage, error)
}
