package leads

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrMissingAgentID is returned when the owning agent is unknown.
	ErrMissingAgentID = errors.New("leads: agent id is required")

	// ErrMissingConversation is returned when the source conversation is unknown.
	ErrMissingConversation = errors.New("leads: conversation id is required")

	// ErrLeadNotFound is returned when a lead is not found.
	ErrLeadNotFound = errors.New("leads: lead not found")
)

// Lead is the derived entity produced when a conversation crosses a
// qualification threshold or completes contact capture. One lead per source
// conversation; repeated scoring updates it in place, never duplicates it.
type Lead struct {
	ID             string    `json:"id"`
	AgentID        string    `json:"agent_id"`
	ConversationID string    `json:"conversation_id"`
	Budget         *int64    `json:"budget"`
	Authority      *string   `json:"authority"`
	Need           *string   `json:"need"`
	Timeline       *string   `json:"timeline"`
	Score          int       `json:"score"`
	Tier           string    `json:"tier"`
	Name           string    `json:"name"`
	Phone          string    `json:"phone"`
	Email          string    `json:"email"`
	Source         string    `json:"source"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Validate checks the identity fields required for an upsert.
func (l *Lead) Validate() error {
	if strings.TrimSpace(l.AgentID) == "" {
		return ErrMissingAgentID
	}
	if strings.TrimSpace(l.ConversationID) == "" {
		return ErrMissingConversation
	}
	return nil
}
