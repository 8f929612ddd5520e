package conversation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/realtyflow/leadqual/internal/llm"
)

// Mode says who is driving a conversation. AI replies are suppressed unless
// the mode is ModeAI.
type Mode string

const (
	ModeAI               Mode = "ai"
	ModeHuman            Mode = "human"
	ModeHandoffRequested Mode = "handoff_requested"
)

// ParseMode validates a mode string from the API layer.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAI, ModeHuman, ModeHandoffRequested:
		return Mode(s), nil
	}
	return "", fmt.Errorf("conversation: unknown mode %q", s)
}

// ErrConversationNotFound is returned for unknown conversation IDs.
var ErrConversationNotFound = errors.New("conversation: not found")

// Service describes the per-turn conversation engine.
type Service interface {
	StartConversation(ctx context.Context, req StartRequest) (*Response, error)
	ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error)
	GetHistory(ctx context.Context, conversationID string) ([]llm.ChatMessage, error)
	SetMode(ctx context.Context, conversationID string, mode Mode) error
}

// StartRequest opens a new conversation thread. Message is optional; when
// present it is processed as the first turn.
type StartRequest struct {
	OrgID   string `json:"org_id"`
	AgentID string `json:"agent_id"`
	Message string `json:"message"`
	Source  string `json:"source"`
}

// MessageRequest is a single inbound turn in an existing conversation.
type MessageRequest struct {
	OrgID          string `json:"org_id"`
	AgentID        string `json:"agent_id"`
	ConversationID string `json:"conversation_id"`
	Message        string `json:"message"`
	Source         string `json:"source"`
}

// Response is the per-turn DTO returned to the API layer. Reply is empty when
// the conversation mode suppresses AI output.
type Response struct {
	ConversationID string    `json:"conversation_id"`
	Reply          string    `json:"reply"`
	Mode           Mode      `json:"mode"`
	Timestamp      time.Time `json:"timestamp"`
}

// State is the per-thread record owned by the dispatcher. Mutated every turn,
// archived but never deleted.
type State struct {
	ConversationID string     `json:"conversation_id"`
	OrgID          string     `json:"org_id"`
	AgentID        string     `json:"agent_id"`
	Mode           Mode       `json:"mode"`
	Source         string     `json:"source"`
	LastActiveAt   time.Time  `json:"last_active_at"`
	CreatedAt      time.Time  `json:"created_at"`
	ArchivedAt     *time.Time `json:"archived_at,omitempty"`
}
