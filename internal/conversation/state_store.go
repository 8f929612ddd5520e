package conversation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StateStore persists ConversationState rows.
type StateStore interface {
	Create(ctx context.Context, state *State) error
	Get(ctx context.Context, conversationID string) (*State, error)
	Touch(ctx context.Context, conversationID string, mode Mode) error
	Archive(ctx context.Context, conversationID string) error
}

// PostgresStateStore stores conversation state in the relational database.
type PostgresStateStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStateStore initializes a store backed by pgxpool.
func NewPostgresStateStore(pool *pgxpool.Pool) *PostgresStateStore {
	if pool == nil {
		panic("conversation: pgx pool required")
	}
	return &PostgresStateStore{pool: pool}
}

// Create inserts a new conversation row.
func (s *PostgresStateStore) Create(ctx context.Context, state *State) error {
	query := `
		INSERT INTO conversation_states (conversation_id, org_id, agent_id, mode, source, last_active_at, created_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	if _, err := s.pool.Exec(ctx, query,
		state.ConversationID,
		state.OrgID,
		state.AgentID,
		string(state.Mode),
		state.Source,
	); err != nil {
		return fmt.Errorf("conversation: insert state failed: %w", err)
	}
	return nil
}

// Get fetches the state for a conversation.
func (s *PostgresStateStore) Get(ctx context.Context, conversationID string) (*State, error) {
	query := `
		SELECT conversation_id, org_id, agent_id, mode, source, last_active_at, created_at, archived_at
		FROM conversation_states
		WHERE conversation_id = $1
	`
	var (
		state State
		mode  string
	)
	if err := s.pool.QueryRow(ctx, query, conversationID).Scan(
		&state.ConversationID,
		&state.OrgID,
		&state.AgentID,
		&mode,
		&state.Source,
		&state.LastActiveAt,
		&state.CreatedAt,
		&state.ArchivedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConversationNotFound
		}
		return nil, fmt.Errorf("conversation: select state failed: %w", err)
	}
	state.Mode = Mode(mode)
	return &state, nil
}

// Touch records activity and the current mode for a conversation.
func (s *PostgresStateStore) Touch(ctx context.Context, conversationID string, mode Mode) error {
	query := `
		UPDATE conversation_states
		SET mode = $2, last_active_at = NOW()
		WHERE conversation_id = $1
	`
	tag, err := s.pool.Exec(ctx, query, conversationID, string(mode))
	if err != nil {
		return fmt.Errorf("conversation: touch state failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// Archive marks the conversation archived. Rows are never deleted.
func (s *PostgresStateStore) Archive(ctx context.Context, conversationID string) error {
	query := `
		UPDATE conversation_states
		SET archived_at = NOW()
		WHERE conversation_id = $1 AND archived_at IS NULL
	`
	tag, err := s.pool.Exec(ctx, query, conversationID)
	if err != nil {
		return fmt.Errorf("conversation: archive state failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// InMemoryStateStore keeps state in memory for development and tests.
type InMemoryStateStore struct {
	mu     sync.RWMutex
	states map[string]*State
}

// NewInMemoryStateStore creates an empty in-memory store.
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{states: make(map[string]*State)}
}

// Create inserts a new conversation.
func (s *InMemoryStateStore) Create(ctx context.Context, state *State) error {
	now := time.Now().UTC()
	state.CreatedAt = now
	state.LastActiveAt = now

	copied := *state
	s.mu.Lock()
	s.states[state.ConversationID] = &copied
	s.mu.Unlock()
	return nil
}

// Get fetches the state for a conversation.
func (s *InMemoryStateStore) Get(ctx context.Context, conversationID string) (*State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.states[conversationID]
	if !ok {
		return nil, ErrConversationNotFound
	}
	copied := *state
	return &copied, nil
}

// Touch records activity and mode.
func (s *InMemoryStateStore) Touch(ctx context.Context, conversationID string, mode Mode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	state.Mode = mode
	state.LastActiveAt = time.Now().UTC()
	return nil
}

// Archive marks the conversation archived.
func (s *InMemoryStateStore) Archive(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, ok := s.states[conversationID]
	if !ok {
		return ErrConversationNotFound
	}
	if state.ArchivedAt == nil {
		now := time.Now().UTC()
		state.ArchivedAt = &now
	}
	return nil
}
