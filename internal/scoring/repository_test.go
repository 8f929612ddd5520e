package scoring

import (
	"context"
	"errors"
	"testing"

	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestPostgresRepositoryGet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithExec(mock)

	rows := pgxmock.NewRows([]string{
		"agent_id", "weights", "budget_criteria", "authority_criteria", "need_criteria", "timeline_criteria", "thresholds",
	}).AddRow(
		"agent-1",
		[]byte(`{"budget":30,"authority":25,"need":25,"timeline":20,"contact":0}`),
		[]byte(`[{"label":"any","min":1,"points":50}]`),
		[]byte(`[]`),
		[]byte(`[]`),
		[]byte(`[]`),
		[]byte(`{"warm":40,"hot":60,"priority":80}`),
	)
	mock.ExpectQuery("SELECT agent_id, weights").WithArgs("agent-1").WillReturnRows(rows)

	cfg, err := repo.Get(context.Background(), "agent-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cfg.AgentID != "agent-1" || cfg.Weights.Budget != 30 || cfg.Thresholds.Priority != 80 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	if len(cfg.Budget) != 1 || cfg.Budget[0].Points != 50 {
		t.Fatalf("unexpected budget criteria: %+v", cfg.Budget)
	}

	mock.ExpectQuery("SELECT agent_id, weights").WithArgs("agent-2").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(context.Background(), "agent-2"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryPutValidatesBeforeWriting(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithExec(mock)

	bad := validConfig()
	bad.Weights.Budget = 10
	if err := repo.Put(context.Background(), &bad); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}

	// No query expectations were registered: an invalid config never reaches
	// the database.
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryPutUpserts(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithExec(mock)

	mock.ExpectExec("INSERT INTO scoring_configs").
		WithArgs("agent-1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	cfg := validConfig()
	if err := repo.Put(context.Background(), &cfg); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPostgresRepositoryDelete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	defer mock.Close()

	repo := newPostgresRepositoryWithExec(mock)

	mock.ExpectExec("DELETE FROM scoring_configs").WithArgs("agent-1").WillReturnResult(pgxmock.NewResult("DELETE", 1))
	if err := repo.Delete(context.Background(), "agent-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	mock.ExpectExec("DELETE FROM scoring_configs").WithArgs("agent-2").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	if err := repo.Delete(context.Background(), "agent-2"); !errors.Is(err, ErrConfigNotFound) {
		t.Fatalf("expected ErrConfigNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
