package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage.
type Repository interface {
	Upsert(ctx context.Context, lead *Lead) (*Lead, error)
	GetByConversation(ctx context.Context, agentID, conversationID string) (*Lead, error)
}

// InMemoryRepository keeps leads in memory for development and tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	leads map[string]*Lead // keyed by agentID + "/" + conversationID
}

// NewInMemoryRepository creates a new in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{leads: make(map[string]*Lead)}
}

// Upsert creates or refreshes the lead for its source conversation.
func (r *InMemoryRepository) Upsert(ctx context.Context, lead *Lead) (*Lead, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := lead.AgentID + "/" + lead.ConversationID
	now := time.Now().UTC()
	if existing, ok := r.leads[key]; ok {
		lead.ID = existing.ID
		lead.CreatedAt = existing.CreatedAt
	} else {
		lead.ID = uuid.NewString()
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now

	copied := *lead
	r.leads[key] = &copied
	return lead, nil
}

// GetByConversation fetches the lead derived from a conversation.
func (r *InMemoryRepository) GetByConversation(ctx context.Context, agentID, conversationID string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[agentID+"/"+conversationID]
	if !ok {
		return nil, ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}
