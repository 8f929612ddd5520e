package conversation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/realtyflow/leadqual/pkg/logging"
)

// Handler exposes the conversation API.
type Handler struct {
	service Service
	logger  *logging.Logger
}

// NewHandler creates a conversation handler.
func NewHandler(service Service, logger *logging.Logger) *Handler {
	if service == nil {
		panic("conversation: service cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Start handles POST /conversations/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.AgentID == "" {
		http.Error(w, "agent_id is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.StartConversation(r.Context(), req)
	if err != nil {
		h.logger.Error("failed to start conversation", "error", err, "agent_id", req.AgentID)
		http.Error(w, "Failed to start conversation", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusCreated, resp)
}

// Message handles POST /conversations/message. A request without a
// conversation_id starts a new thread with the message as its first turn.
func (h *Handler) Message(w http.ResponseWriter, r *http.Request) {
	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.ConversationID == "" {
		if req.AgentID == "" {
			http.Error(w, "agent_id is required to start a conversation", http.StatusBadRequest)
			return
		}
		resp, err := h.service.StartConversation(r.Context(), StartRequest{
			OrgID:   req.OrgID,
			AgentID: req.AgentID,
			Message: req.Message,
			Source:  req.Source,
		})
		if err != nil {
			h.logger.Error("failed to start conversation from message", "error", err, "agent_id", req.AgentID)
			http.Error(w, "Failed to start conversation", http.StatusInternalServerError)
			return
		}
		h.writeJSON(w, http.StatusCreated, resp)
		return
	}

	resp, err := h.service.ProcessMessage(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to process message",
			"error", err, "conversation_id", req.ConversationID)
		http.Error(w, "Failed to process message", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// History handles GET /conversations/{conversationID}/history.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	history, err := h.service.GetHistory(r.Context(), conversationID)
	if err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to load history", "error", err, "conversation_id", conversationID)
		http.Error(w, "Failed to load history", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"conversation_id": conversationID,
		"messages":        history,
	})
}

// SetMode handles POST /conversations/{conversationID}/mode, moving the
// thread between AI and human control.
func (h *Handler) SetMode(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var body struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	mode, err := ParseMode(body.Mode)
	if err != nil {
		http.Error(w, "mode must be one of: ai, human, handoff_requested", http.StatusUnprocessableEntity)
		return
	}

	if err := h.service.SetMode(r.Context(), conversationID, mode); err != nil {
		if errors.Is(err, ErrConversationNotFound) {
			http.Error(w, "Conversation not found", http.StatusNotFound)
			return
		}
		h.logger.Error("failed to set mode", "error", err, "conversation_id", conversationID)
		http.Error(w, "Failed to set mode", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{
		"conversation_id": conversationID,
		"mode":            string(mode),
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
