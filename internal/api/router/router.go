package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/realtyflow/leadqual/internal/conversation"
	httpmiddleware "github.com/realtyflow/leadqual/internal/http/middleware"
	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/internal/scoring"
	"github.com/realtyflow/leadqual/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger              *logging.Logger
	ConversationHandler *conversation.Handler
	ScoringHandler      *scoring.Handler
	UsageHandler        *ledger.Handler
	MetricsHandler      http.Handler
	CORSAllowedOrigins  []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.ConversationHandler != nil {
		r.Route("/conversations", func(r chi.Router) {
			r.Post("/start", cfg.ConversationHandler.Start)
			r.Post("/message", cfg.ConversationHandler.Message)
			r.Get("/{conversationID}/history", cfg.ConversationHandler.History)
			r.Post("/{conversationID}/mode", cfg.ConversationHandler.SetMode)
		})
	}

	if cfg.UsageHandler != nil {
		r.Get("/usage", cfg.UsageHandler.Usage)
	}

	if cfg.ScoringHandler != nil {
		r.Route("/agents/{agentID}/scoring-config", func(r chi.Router) {
			r.Get("/", cfg.ScoringHandler.Get)
			r.Put("/", cfg.ScoringHandler.Put)
			r.Delete("/", cfg.ScoringHandler.Delete)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
