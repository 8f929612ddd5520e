package ledger

import (
	"context"
	"sync"
)

// InMemoryStore keeps records in memory for development and tests.
type InMemoryStore struct {
	mu      sync.RWMutex
	records []InvocationRecord
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

// Insert appends the record.
func (s *InMemoryStore) Insert(ctx context.Context, rec InvocationRecord) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

// Aggregate sums matching records.
func (s *InMemoryStore) Aggregate(ctx context.Context, f Filter) (Totals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var totals Totals
	for _, rec := range s.records {
		if !matches(rec, f) {
			continue
		}
		totals.Calls++
		if !rec.Success {
			totals.Failures++
		}
		totals.PromptTokens += int64(rec.PromptTokens)
		totals.CompletionTokens += int64(rec.CompletionTokens)
		totals.TotalTokens += int64(rec.TotalTokens)
		totals.CostUSD += rec.CostUSD
	}
	return totals, nil
}

// Records returns a copy of everything written so far.
func (s *InMemoryStore) Records() []InvocationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]InvocationRecord, len(s.records))
	copy(out, s.records)
	return out
}

func matches(rec InvocationRecord, f Filter) bool {
	if f.OrgID != "" && rec.Attribution.OrgID != f.OrgID {
		return false
	}
	if f.AgentID != "" && rec.Attribution.AgentID != f.AgentID {
		return false
	}
	if f.Category != "" && rec.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && rec.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !rec.CreatedAt.Before(f.To) {
		return false
	}
	return true
}
