package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUsageHandler(t *testing.T) (*Handler, *InMemoryStore) {
	t.Helper()
	store := NewInMemoryStore()
	l := New(store, DefaultRates(), nil, nil)
	return NewHandler(l, nil), store
}

func TestUsageAggregatesByOrg(t *testing.T) {
	handler, store := newUsageHandler(t)
	now := time.Now().UTC()

	require.NoError(t, store.Insert(context.Background(), InvocationRecord{
		Category: CategoryReply, PromptTokens: 100, CompletionTokens: 20, TotalTokens: 120,
		Success: true, Attribution: Attribution{OrgID: "org-a"}.WithDefaults(), CreatedAt: now,
	}))
	require.NoError(t, store.Insert(context.Background(), InvocationRecord{
		Category: CategoryReply, PromptTokens: 10, TotalTokens: 10,
		Success: true, Attribution: Attribution{OrgID: "org-b"}.WithDefaults(), CreatedAt: now,
	}))

	req := httptest.NewRequest(http.MethodGet, "/usage?org=org-a", nil)
	rec := httptest.NewRecorder()
	handler.Usage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var totals Totals
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.Equal(t, int64(1), totals.Calls)
	assert.Equal(t, int64(120), totals.TotalTokens)
}

func TestUsageAcceptsDateOnlyParams(t *testing.T) {
	handler, store := newUsageHandler(t)
	require.NoError(t, store.Insert(context.Background(), InvocationRecord{
		Category: CategoryReply, TotalTokens: 5, Success: true,
		CreatedAt: time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC),
	}))

	req := httptest.NewRequest(http.MethodGet, "/usage?from=2026-02-01&to=2026-03-01", nil)
	rec := httptest.NewRecorder()
	handler.Usage(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var totals Totals
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &totals))
	assert.Equal(t, int64(1), totals.Calls)
}

func TestUsageRejectsBadDate(t *testing.T) {
	handler, _ := newUsageHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/usage?from=yesterday", nil)
	rec := httptest.NewRecorder()
	handler.Usage(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
