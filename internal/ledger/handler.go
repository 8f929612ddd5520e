package ledger

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/realtyflow/leadqual/pkg/logging"
)

// Handler exposes the read-only usage aggregation endpoint.
type Handler struct {
	ledger *Ledger
	logger *logging.Logger
}

// NewHandler creates a usage handler.
func NewHandler(ledger *Ledger, logger *logging.Logger) *Handler {
	if ledger == nil {
		panic("ledger: ledger cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{ledger: ledger, logger: logger}
}

// Usage handles GET /usage with optional org, agent, category, from, to params.
// Date params accept RFC 3339 or plain YYYY-MM-DD.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		OrgID:    q.Get("org"),
		AgentID:  q.Get("agent"),
		Category: Category(q.Get("category")),
	}

	var err error
	if filter.From, err = parseDateParam(q.Get("from")); err != nil {
		http.Error(w, "Invalid from date", http.StatusBadRequest)
		return
	}
	if filter.To, err = parseDateParam(q.Get("to")); err != nil {
		http.Error(w, "Invalid to date", http.StatusBadRequest)
		return
	}

	totals, err := h.ledger.Aggregate(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to aggregate usage", "error", err)
		http.Error(w, "Failed to aggregate usage", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(totals); err != nil {
		h.logger.Error("failed to write usage response", "error", err)
	}
}

func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", raw)
}
