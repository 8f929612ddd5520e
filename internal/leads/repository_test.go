package leads

import (
	"context"
	"errors"
	"testing"
)

func int64Ptr(v int64) *int64 { return &v }

func TestUpsertCreatesThenRefreshes(t *testing.T) {
	repo := NewInMemoryRepository()

	first, err := repo.Upsert(context.Background(), &Lead{
		AgentID:        "agent-1",
		ConversationID: "conv-1",
		Budget:         int64Ptr(500000),
		Score:          45,
		Tier:           "warm",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if first.ID == "" || first.CreatedAt.IsZero() {
		t.Fatalf("expected identity assigned on create, got %+v", first)
	}

	second, err := repo.Upsert(context.Background(), &Lead{
		AgentID:        "agent-1",
		ConversationID: "conv-1",
		Budget:         int64Ptr(900000),
		Score:          70,
		Tier:           "hot",
		Name:           "Dana",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("re-scoring the same conversation must update in place, got new id %s", second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Fatalf("created_at must survive updates")
	}

	stored, err := repo.GetByConversation(context.Background(), "agent-1", "conv-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if stored.Score != 70 || stored.Tier != "hot" || stored.Name != "Dana" {
		t.Fatalf("expected refreshed fields, got %+v", stored)
	}
}

func TestUpsertSeparateConversationsSeparateLeads(t *testing.T) {
	repo := NewInMemoryRepository()

	a, _ := repo.Upsert(context.Background(), &Lead{AgentID: "agent-1", ConversationID: "conv-1"})
	b, _ := repo.Upsert(context.Background(), &Lead{AgentID: "agent-1", ConversationID: "conv-2"})
	if a.ID == b.ID {
		t.Fatalf("distinct conversations must produce distinct leads")
	}
}

func TestUpsertValidation(t *testing.T) {
	repo := NewInMemoryRepository()

	if _, err := repo.Upsert(context.Background(), &Lead{ConversationID: "conv-1"}); !errors.Is(err, ErrMissingAgentID) {
		t.Fatalf("expected ErrMissingAgentID, got %v", err)
	}
	if _, err := repo.Upsert(context.Background(), &Lead{AgentID: "agent-1"}); !errors.Is(err, ErrMissingConversation) {
		t.Fatalf("expected ErrMissingConversation, got %v", err)
	}
}

func TestGetByConversationMiss(t *testing.T) {
	repo := NewInMemoryRepository()
	if _, err := repo.GetByConversation(context.Background(), "agent-1", "conv-1"); !errors.Is(err, ErrLeadNotFound) {
		t.Fatalf("expected ErrLeadNotFound, got %v", err)
	}
}
