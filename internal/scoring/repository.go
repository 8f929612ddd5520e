package scoring

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrConfigNotFound is returned when an agent has no custom rubric.
var ErrConfigNotFound = errors.New("scoring: config not found")

// Repository stores per-agent scoring configs. Get returning ErrConfigNotFound
// means the default rubric applies.
type Repository interface {
	Get(ctx context.Context, agentID string) (*Config, error)
	Put(ctx context.Context, cfg *Config) error
	Delete(ctx context.Context, agentID string) error
}

type rowQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores scoring configs in the relational database.
type PostgresRepository struct {
	pool rowQuerier
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("scoring: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

func newPostgresRepositoryWithExec(exec rowQuerier) *PostgresRepository {
	if exec == nil {
		panic("scoring: exec required")
	}
	return &PostgresRepository{pool: exec}
}

// Get fetches the config for an agent.
func (r *PostgresRepository) Get(ctx context.Context, agentID string) (*Config, error) {
	query := `
		SELECT agent_id, weights, budget_criteria, authority_criteria, need_criteria, timeline_criteria, thresholds
		FROM scoring_configs
		WHERE agent_id = $1
	`
	var (
		cfg  Config
		cols = make([][]byte, 6)
	)
	if err := r.pool.QueryRow(ctx, query, agentID).Scan(
		&cfg.AgentID, &cols[0], &cols[1], &cols[2], &cols[3], &cols[4], &cols[5],
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrConfigNotFound
		}
		return nil, fmt.Errorf("scoring: select failed: %w", err)
	}

	for i, dest := range []any{&cfg.Weights, &cfg.Budget, &cfg.Authority, &cfg.Need, &cfg.Timeline, &cfg.Thresholds} {
		if err := json.Unmarshal(cols[i], dest); err != nil {
			return nil, fmt.Errorf("scoring: failed to decode config: %w", err)
		}
	}
	return &cfg, nil
}

// Put validates and upserts the config. Invalid configs are rejected, never
// clamped.
func (r *PostgresRepository) Put(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	cols, err := encodeConfig(cfg)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO scoring_configs (agent_id, weights, budget_criteria, authority_criteria, need_criteria, timeline_criteria, thresholds, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (agent_id) DO UPDATE SET
			weights = EXCLUDED.weights,
			budget_criteria = EXCLUDED.budget_criteria,
			authority_criteria = EXCLUDED.authority_criteria,
			need_criteria = EXCLUDED.need_criteria,
			timeline_criteria = EXCLUDED.timeline_criteria,
			thresholds = EXCLUDED.thresholds,
			updated_at = NOW()
	`
	if _, err := r.pool.Exec(ctx, query, cfg.AgentID, cols[0], cols[1], cols[2], cols[3], cols[4], cols[5]); err != nil {
		return fmt.Errorf("scoring: upsert failed: %w", err)
	}
	return nil
}

// Delete removes an agent's custom rubric, reverting it to the default.
func (r *PostgresRepository) Delete(ctx context.Context, agentID string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM scoring_configs WHERE agent_id = $1`, agentID)
	if err != nil {
		return fmt.Errorf("scoring: delete failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrConfigNotFound
	}
	return nil
}

func encodeConfig(cfg *Config) ([6][]byte, error) {
	var cols [6][]byte
	for i, src := range []any{cfg.Weights, cfg.Budget, cfg.Authority, cfg.Need, cfg.Timeline, cfg.Thresholds} {
		data, err := json.Marshal(src)
		if err != nil {
			return cols, fmt.Errorf("scoring: failed to encode config: %w", err)
		}
		cols[i] = data
	}
	return cols, nil
}

// InMemoryRepository holds configs in memory for development and tests.
type InMemoryRepository struct {
	mu      sync.RWMutex
	configs map[string]*Config
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{configs: make(map[string]*Config)}
}

// Get fetches the config for an agent.
func (r *InMemoryRepository) Get(ctx context.Context, agentID string) (*Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cfg, ok := r.configs[agentID]
	if !ok {
		return nil, ErrConfigNotFound
	}
	copied := *cfg
	return &copied, nil
}

// Put validates and stores the config.
func (r *InMemoryRepository) Put(ctx context.Context, cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	copied := *cfg
	r.mu.Lock()
	r.configs[cfg.AgentID] = &copied
	r.mu.Unlock()
	return nil
}

// Delete removes the config.
func (r *InMemoryRepository) Delete(ctx context.Context, agentID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.configs[agentID]; !ok {
		return ErrConfigNotFound
	}
	delete(r.configs, agentID)
	return nil
}
