package scoring

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/realtyflow/leadqual/pkg/logging"
)

// Handler exposes the per-agent scoring config accessor.
type Handler struct {
	repo   Repository
	logger *logging.Logger
}

// NewHandler creates a scoring config handler.
func NewHandler(repo Repository, logger *logging.Logger) *Handler {
	if repo == nil {
		panic("scoring: repository cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{repo: repo, logger: logger}
}

// Get handles GET /agents/{agentID}/scoring-config.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	cfg, err := h.repo.Get(r.Context(), agentID)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			http.Error(w, "No custom scoring config; default rubric applies", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load scoring config", "error", err, "agent_id", agentID)
		http.Error(w, "Failed to load scoring config", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, cfg)
}

// Put handles PUT /agents/{agentID}/scoring-config. Writes violating the
// weight-sum or threshold invariants are rejected with 422.
func (h *Handler) Put(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")

	var cfg Config
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		h.logger.Error("failed to decode scoring config", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	cfg.AgentID = agentID

	if err := h.repo.Put(r.Context(), &cfg); err != nil {
		if errors.Is(err, ErrInvalidConfig) {
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("failed to store scoring config", "error", err, "agent_id", agentID)
		http.Error(w, "Failed to store scoring config", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, &cfg)
}

// Delete handles DELETE /agents/{agentID}/scoring-config.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	agentID := chi.URLParam(r, "agentID")
	if err := h.repo.Delete(r.Context(), agentID); err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			http.Error(w, "No custom scoring config", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to delete scoring config", "error", err, "agent_id", agentID)
		http.Error(w, "Failed to delete scoring config", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
