package llm

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeOpenAIChat struct {
	req  openai.ChatCompletionRequest
	resp openai.ChatCompletionResponse
	err  error
}

func (f *fakeOpenAIChat) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.req = request
	return f.resp, f.err
}

func okChatResponse(text string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message:      openai.ChatCompletionMessage{Content: text},
			FinishReason: openai.FinishReasonStop,
		}},
		Usage: openai.Usage{PromptTokens: 30, CompletionTokens: 8, TotalTokens: 38},
	}
}

func TestOpenAICompleteSamplingFamily(t *testing.T) {
	api := &fakeOpenAIChat{resp: okChatResponse("hi there")}
	client := NewOpenAIClient(api)

	resp, err := client.Complete(context.Background(), CompletionRequest{
		Model:       "gpt-4o",
		Family:      FamilySampling,
		System:      []string{"be brief"},
		Messages:    []ChatMessage{{Role: ChatRoleUser, Content: "hello"}},
		MaxTokens:   150,
		Temperature: 0.4,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Text != "hi there" {
		t.Fatalf("unexpected text %q", resp.Text)
	}
	if api.req.MaxTokens != 150 || api.req.MaxCompletionTokens != 0 {
		t.Fatalf("expected sampling token budget, got %+v", api.req)
	}
	if api.req.Temperature != 0.4 {
		t.Fatalf("expected temperature carried, got %f", api.req.Temperature)
	}
	if len(api.req.Messages) != 2 || api.req.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Fatalf("expected system block prepended, got %+v", api.req.Messages)
	}
}

func TestOpenAICompleteReasoningFamily(t *testing.T) {
	api := &fakeOpenAIChat{resp: okChatResponse("answer")}
	client := NewOpenAIClient(api)

	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:           "o3-mini",
		Family:          FamilyReasoning,
		Messages:        []ChatMessage{{Role: ChatRoleUser, Content: "think hard"}},
		MaxTokens:       300,
		Temperature:     -1,
		ReasoningEffort: "medium",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.req.MaxCompletionTokens != 300 || api.req.MaxTokens != 0 {
		t.Fatalf("expected reasoning token budget, got %+v", api.req)
	}
	if api.req.ReasoningEffort != "medium" {
		t.Fatalf("expected reasoning effort, got %q", api.req.ReasoningEffort)
	}
	if api.req.Temperature != 0 {
		t.Fatalf("expected no temperature for reasoning model, got %f", api.req.Temperature)
	}
}

func TestOpenAICompleteJSONResponseFormat(t *testing.T) {
	api := &fakeOpenAIChat{resp: okChatResponse(`{"ok":true}`)}
	client := NewOpenAIClient(api)

	_, err := client.Complete(context.Background(), CompletionRequest{
		Model:        "gpt-4o",
		Family:       FamilySampling,
		Messages:     []ChatMessage{{Role: ChatRoleUser, Content: "give me json"}},
		JSONResponse: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if api.req.ResponseFormat == nil || api.req.ResponseFormat.Type != openai.ChatCompletionResponseFormatTypeJSONObject {
		t.Fatalf("expected JSON response format, got %+v", api.req.ResponseFormat)
	}
}

func TestOpenAICompleteReadsCachedTokens(t *testing.T) {
	resp := okChatResponse("cached")
	resp.Usage.PromptTokensDetails = &openai.PromptTokensDetails{CachedTokens: 20}
	api := &fakeOpenAIChat{resp: resp}
	client := NewOpenAIClient(api)

	out, err := client.Complete(context.Background(), CompletionRequest{
		Model:    "gpt-4o",
		Family:   FamilySampling,
		Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Usage.CachedTokens != 20 {
		t.Fatalf("expected cached tokens surfaced, got %d", out.Usage.CachedTokens)
	}
}

func TestOpenAICompleteErrors(t *testing.T) {
	t.Run("missing model", func(t *testing.T) {
		client := NewOpenAIClient(&fakeOpenAIChat{})
		if _, err := client.Complete(context.Background(), CompletionRequest{}); err == nil {
			t.Fatalf("expected error")
		}
	})
	t.Run("api failure", func(t *testing.T) {
		client := NewOpenAIClient(&fakeOpenAIChat{err: errors.New("quota")})
		_, err := client.Complete(context.Background(), CompletionRequest{
			Model:    "gpt-4o",
			Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
		})
		if err == nil {
			t.Fatalf("expected error")
		}
	})
	t.Run("no choices", func(t *testing.T) {
		client := NewOpenAIClient(&fakeOpenAIChat{resp: openai.ChatCompletionResponse{}})
		_, err := client.Complete(context.Background(), CompletionRequest{
			Model:    "gpt-4o",
			Messages: []ChatMessage{{Role: ChatRoleUser, Content: "hi"}},
		})
		if err == nil {
			t.Fatalf("expected error")
		}
	})
}

type fakeOpenAIEmbeddings struct {
	resp openai.EmbeddingResponse
	err  error
}

func (f *fakeOpenAIEmbeddings) CreateEmbeddings(ctx context.Context, request openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error) {
	return f.resp, f.err
}

func TestOpenAIEmbed(t *testing.T) {
	api := &fakeOpenAIEmbeddings{resp: openai.EmbeddingResponse{
		Data:  []openai.Embedding{{Embedding: []float32{0.5, 0.25}}},
		Usage: openai.Usage{PromptTokens: 9, TotalTokens: 9},
	}}
	embedder := NewOpenAIEmbedder(api)

	vec, usage, err := embedder.Embed(context.Background(), "text-embedding-3-small", "a cozy bungalow")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 2 || usage.InputTokens != 9 {
		t.Fatalf("unexpected embedding result: %v %+v", vec, usage)
	}
}

func TestOpenAIEmbedEmptyInput(t *testing.T) {
	embedder := NewOpenAIEmbedder(&fakeOpenAIEmbeddings{})
	if _, _, err := embedder.Embed(context.Background(), "text-embedding-3-small", "  "); err == nil {
		t.Fatalf("expected error for empty input")
	}
}
