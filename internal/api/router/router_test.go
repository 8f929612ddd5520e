package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/realtyflow/leadqual/internal/conversation"
	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/realtyflow/leadqual/internal/scoring"
	"github.com/realtyflow/leadqual/pkg/logging"
)

type stubConversationService struct{}

func (stubConversationService) StartConversation(ctx context.Context, req conversation.StartRequest) (*conversation.Response, error) {
	return &conversation.Response{ConversationID: "conv-1", Reply: "hello", Mode: conversation.ModeAI}, nil
}

func (stubConversationService) ProcessMessage(ctx context.Context, req conversation.MessageRequest) (*conversation.Response, error) {
	return &conversation.Response{ConversationID: req.ConversationID, Reply: "ok", Mode: conversation.ModeAI}, nil
}

func (stubConversationService) GetHistory(ctx context.Context, conversationID string) ([]llm.ChatMessage, error) {
	return nil, nil
}

func (stubConversationService) SetMode(ctx context.Context, conversationID string, mode conversation.Mode) error {
	return nil
}

func newTestRouter() http.Handler {
	logger := logging.Default()
	rec := ledger.New(ledger.NewInMemoryStore(), ledger.DefaultRates(), logger, nil)
	return New(&Config{
		Logger:              logger,
		ConversationHandler: conversation.NewHandler(stubConversationService{}, logger),
		ScoringHandler:      scoring.NewHandler(scoring.NewInMemoryRepository(), logger),
		UsageHandler:        ledger.NewHandler(rec, logger),
		CORSAllowedOrigins:  []string{"https://app.example.com"},
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"health", http.MethodGet, "/health", "", http.StatusOK},
		{"start conversation", http.MethodPost, "/conversations/start", `{"agent_id":"agent-1"}`, http.StatusCreated},
		{"message", http.MethodPost, "/conversations/message", `{"conversation_id":"conv-1","message":"hi"}`, http.StatusOK},
		{"history", http.MethodGet, "/conversations/conv-1/history", "", http.StatusOK},
		{"mode", http.MethodPost, "/conversations/conv-1/mode", `{"mode":"human"}`, http.StatusOK},
		{"usage", http.MethodGet, "/usage", "", http.StatusOK},
		{"scoring config missing", http.MethodGet, "/agents/agent-1/scoring-config", "", http.StatusNotFound},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}
			req := httptest.NewRequest(tt.method, tt.path, body)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Fatalf("%s %s: expected %d, got %d: %s", tt.method, tt.path, tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRouterHealthPayload(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if !strings.Contains(rec.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health payload: %s", rec.Body.String())
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/conversations/start", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example.com" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}
}
