package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type openAIChatAPI interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type openAIEmbeddingAPI interface {
	CreateEmbeddings(ctx context.Context, request openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// OpenAIClient adapts the hosted OpenAI chat API to CompletionClient.
type OpenAIClient struct {
	api openAIChatAPI
}

// NewOpenAIClient wraps a go-openai client.
func NewOpenAIClient(api openAIChatAPI) *OpenAIClient {
	if api == nil {
		panic("llm: openai chat client cannot be nil")
	}
	return &OpenAIClient{api: api}
}

func (c *OpenAIClient) Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	if strings.TrimSpace(req.Model) == "" {
		return CompletionResponse{}, errors.New("llm: openai model id is required")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(req.System)+len(req.Messages))
	for _, block := range req.System {
		if strings.TrimSpace(block) == "" {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: block,
		})
	}
	for _, msg := range req.Messages {
		content := strings.TrimSpace(msg.Content)
		if content == "" {
			continue
		}
		switch msg.Role {
		case ChatRoleSystem:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: content})
		case ChatRoleUser:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: content})
		case ChatRoleAssistant:
			messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content})
		default:
			return CompletionResponse{}, fmt.Errorf("llm: unsupported role %q", msg.Role)
		}
	}

	chatReq := openai.ChatCompletionRequest{
		Model:    req.Model,
		Messages: messages,
	}
	switch req.Family {
	case FamilyReasoning:
		// Reasoning models reject the sampling knobs and use the dedicated
		// completion-token budget field.
		if req.MaxTokens > 0 {
			chatReq.MaxCompletionTokens = int(req.MaxTokens)
		}
		if req.ReasoningEffort != "" {
			chatReq.ReasoningEffort = req.ReasoningEffort
		}
	default:
		if req.MaxTokens > 0 {
			chatReq.MaxTokens = int(req.MaxTokens)
		}
		if req.Temperature >= 0 {
			chatReq.Temperature = req.Temperature
		}
		if req.TopP != 0 {
			chatReq.TopP = req.TopP
		}
	}
	if req.JSONResponse {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := c.api.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return CompletionResponse{}, fmt.Errorf("llm: openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return CompletionResponse{}, errors.New("llm: openai returned no choices")
	}

	out := CompletionResponse{
		Text:       strings.TrimSpace(resp.Choices[0].Message.Content),
		StopReason: string(resp.Choices[0].FinishReason),
		Usage: TokenUsage{
			InputTokens:  int32(resp.Usage.PromptTokens),
			OutputTokens: int32(resp.Usage.CompletionTokens),
			TotalTokens:  int32(resp.Usage.TotalTokens),
		},
	}
	if resp.Usage.PromptTokensDetails != nil {
		out.Usage.CachedTokens = int32(resp.Usage.PromptTokensDetails.CachedTokens)
	}
	return out, nil
}

// OpenAIEmbedder adapts the hosted OpenAI embedding API to EmbeddingClient.
type OpenAIEmbedder struct {
	api openAIEmbeddingAPI
}

// NewOpenAIEmbedder wraps a go-openai client for embeddings.
func NewOpenAIEmbedder(api openAIEmbeddingAPI) *OpenAIEmbedder {
	if api == nil {
		panic("llm: openai embedding client cannot be nil")
	}
	return &OpenAIEmbedder{api: api}
}

func (c *OpenAIEmbedder) Embed(ctx context.Context, model string, input string) ([]float32, TokenUsage, error) {
	if strings.TrimSpace(input) == "" {
		return nil, TokenUsage{}, errors.New("llm: embedding input is empty")
	}
	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(model),
		Input: []string{input},
	})
	if err != nil {
		return nil, TokenUsage{}, fmt.Errorf("llm: openai embedding failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, TokenUsage{}, errors.New("llm: openai returned no embedding")
	}
	usage := TokenUsage{
		InputTokens: int32(resp.Usage.PromptTokens),
		TotalTokens: int32(resp.Usage.TotalTokens),
	}
	return resp.Data[0].Embedding, usage, nil
}
