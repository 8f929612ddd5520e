package ledger

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore appends invocation records to the model_invocations table.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	if pool == nil {
		panic("ledger: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

// Insert appends one row.
func (s *PostgresStore) Insert(ctx context.Context, rec InvocationRecord) error {
	query := `
		INSERT INTO model_invocations (
			id, tier, model, category,
			prompt_tokens, cached_tokens, completion_tokens, total_tokens,
			cost_usd, latency_ms, success, fallback, estimated_usage,
			org_id, agent_id, conversation_id, user_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`
	if _, err := s.pool.Exec(ctx, query,
		rec.ID,
		rec.Tier,
		rec.Model,
		string(rec.Category),
		rec.PromptTokens,
		rec.CachedTokens,
		rec.CompletionTokens,
		rec.TotalTokens,
		rec.CostUSD,
		rec.LatencyMs,
		rec.Success,
		rec.Fallback,
		rec.EstimatedUsage,
		rec.Attribution.OrgID,
		rec.Attribution.AgentID,
		rec.Attribution.ConversationID,
		rec.Attribution.UserID,
		rec.CreatedAt,
	); err != nil {
		return fmt.Errorf("ledger: insert failed: %w", err)
	}
	return nil
}

// Aggregate sums token counts and cost over the filtered rows.
func (s *PostgresStore) Aggregate(ctx context.Context, f Filter) (Totals, error) {
	var (
		conditions []string
		args       []any
	)
	add := func(clause string, value any) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(clause, len(args)))
	}

	if f.OrgID != "" {
		add("org_id = $%d", f.OrgID)
	}
	if f.AgentID != "" {
		add("agent_id = $%d", f.AgentID)
	}
	if f.Category != "" {
		add("category = $%d", string(f.Category))
	}
	if !f.From.IsZero() {
		add("created_at >= $%d", f.From)
	}
	if !f.To.IsZero() {
		add("created_at < $%d", f.To)
	}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE NOT success),
			COALESCE(SUM(prompt_tokens), 0),
			COALESCE(SUM(completion_tokens), 0),
			COALESCE(SUM(total_tokens), 0),
			COALESCE(SUM(cost_usd), 0)
		FROM model_invocations
	`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var totals Totals
	if err := s.pool.QueryRow(ctx, query, args...).Scan(
		&totals.Calls,
		&totals.Failures,
		&totals.PromptTokens,
		&totals.CompletionTokens,
		&totals.TotalTokens,
		&totals.CostUSD,
	); err != nil {
		return Totals{}, fmt.Errorf("ledger: aggregate failed: %w", err)
	}
	return totals, nil
}
