package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Upsert inserts or refreshes the row keyed by (agent_id, conversation_id).
func (r *PostgresRepository) Upsert(ctx context.Context, lead *Lead) (*Lead, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO leads (id, agent_id, conversation_id, budget, authority, need, timeline, score, tier, name, phone, email, source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (agent_id, conversation_id) DO UPDATE SET
			budget = EXCLUDED.budget,
			authority = EXCLUDED.authority,
			need = EXCLUDED.need,
			timeline = EXCLUDED.timeline,
			score = EXCLUDED.score,
			tier = EXCLUDED.tier,
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		uuid.New(),
		lead.AgentID,
		lead.ConversationID,
		lead.Budget,
		lead.Authority,
		lead.Need,
		lead.Timeline,
		lead.Score,
		lead.Tier,
		lead.Name,
		lead.Phone,
		lead.Email,
		lead.Source,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt); err != nil {
		return nil, fmt.Errorf("leads: upsert failed: %w", err)
	}
	return lead, nil
}

// GetByConversation fetches the lead derived from a conversation.
func (r *PostgresRepository) GetByConversation(ctx context.Context, agentID, conversationID string) (*Lead, error) {
	query := `
		SELECT id, agent_id, conversation_id, budget, authority, need, timeline, score, tier, name, phone, email, source, created_at, updated_at
		FROM leads
		WHERE agent_id = $1 AND conversation_id = $2
	`
	row := r.pool.QueryRow(ctx, query, agentID, conversationID)
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.AgentID,
		&lead.ConversationID,
		&lead.Budget,
		&lead.Authority,
		&lead.Need,
		&lead.Timeline,
		&lead.Score,
		&lead.Tier,
		&lead.Name,
		&lead.Phone,
		&lead.Email,
		&lead.Source,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return &lead, nil
}
