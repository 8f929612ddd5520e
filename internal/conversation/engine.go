package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/realtyflow/leadqual/internal/intent"
	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/internal/leads"
	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/realtyflow/leadqual/internal/qualification"
	"github.com/realtyflow/leadqual/internal/scoring"
	"github.com/realtyflow/leadqual/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// replyContextMessages bounds how much transcript the reply call sees.
const replyContextMessages = 12

// Turn outcomes reported to the observer.
const (
	turnOutcomeReplied    = "replied"
	turnOutcomeSuppressed = "suppressed"
	turnOutcomeHandoff    = "handoff"
	turnOutcomeFallback   = "fallback_reply"
)

type intentClassifier interface {
	Classify(ctx context.Context, history []llm.ChatMessage, message string, pendingSlot qualification.Slot, attr ledger.Attribution) intent.Category
}

type slotExtractor interface {
	Extract(ctx context.Context, transcript []llm.ChatMessage, memory *qualification.Memory, attr ledger.Attribution) (qualification.Update, error)
}

type completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.CompletionResponse, error)
}

// TurnObserver receives per-turn metrics.
type TurnObserver interface {
	ObserveTurn(category string, outcome string, seconds float64)
}

// Engine is the conversation dispatcher: it owns the per-turn pipeline of
// classify, extract, score, and reply, and is the only writer of conversation
// state and qualification memory.
type Engine struct {
	states      StateStore
	transcripts TranscriptStore
	memories    qualification.MemoryStore
	classifier  intentClassifier
	extractor   slotExtractor
	scorer      *scoring.Engine
	configs     scoring.Repository
	leads       leads.Repository
	llm         completer
	logger      *logging.Logger
	observer    TurnObserver
	tracer      trace.Tracer

	replyMaxTokens int32
	transcriptCap  int
}

// EngineOption configures the engine.
type EngineOption func(*Engine)

// WithTurnObserver attaches per-turn metrics.
func WithTurnObserver(observer TurnObserver) EngineOption {
	return func(e *Engine) { e.observer = observer }
}

// WithReplyMaxTokens caps generated reply length.
func WithReplyMaxTokens(max int32) EngineOption {
	return func(e *Engine) {
		if max > 0 {
			e.replyMaxTokens = max
		}
	}
}

// WithTranscriptCap bounds how many messages the stored transcript keeps.
func WithTranscriptCap(messages int) EngineOption {
	return func(e *Engine) {
		if messages > 0 {
			e.transcriptCap = messages
		}
	}
}

// NewEngine wires the dispatcher. All collaborators are required.
func NewEngine(
	states StateStore,
	transcripts TranscriptStore,
	memories qualification.MemoryStore,
	classifier intentClassifier,
	extractor slotExtractor,
	scorer *scoring.Engine,
	configs scoring.Repository,
	leadRepo leads.Repository,
	llmClient completer,
	logger *logging.Logger,
	opts ...EngineOption,
) *Engine {
	if states == nil {
		panic("conversation: state store cannot be nil")
	}
	if transcripts == nil {
		panic("conversation: transcript store cannot be nil")
	}
	if memories == nil {
		panic("conversation: memory store cannot be nil")
	}
	if classifier == nil {
		panic("conversation: classifier cannot be nil")
	}
	if extractor == nil {
		panic("conversation: extractor cannot be nil")
	}
	if scorer == nil {
		panic("conversation: scoring engine cannot be nil")
	}
	if configs == nil {
		panic("conversation: scoring repository cannot be nil")
	}
	if leadRepo == nil {
		panic("conversation: leads repository cannot be nil")
	}
	if llmClient == nil {
		panic("conversation: llm client cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}

	e := &Engine{
		states:         states,
		transcripts:    transcripts,
		memories:       memories,
		classifier:     classifier,
		extractor:      extractor,
		scorer:         scorer,
		configs:        configs,
		leads:          leadRepo,
		llm:            llmClient,
		logger:         logger,
		tracer:         otel.Tracer("leadqual.internal.conversation"),
		replyMaxTokens: 400,
		transcriptCap:  40,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartConversation creates a new thread. When the request carries a first
// message it is processed as a regular turn; otherwise a canned opener is
// stored so the widget has something to show.
func (e *Engine) StartConversation(ctx context.Context, req StartRequest) (*Response, error) {
	if strings.TrimSpace(req.AgentID) == "" {
		return nil, errors.New("conversation: agent id is required")
	}

	state := &State{
		ConversationID: uuid.NewString(),
		OrgID:          req.OrgID,
		AgentID:        req.AgentID,
		Mode:           ModeAI,
		Source:         req.Source,
	}
	if err := e.states.Create(ctx, state); err != nil {
		return nil, err
	}
	e.logger.Info("conversation started",
		"conversation_id", state.ConversationID,
		"agent_id", state.AgentID,
		"source", state.Source,
	)

	if strings.TrimSpace(req.Message) == "" {
		history := []llm.ChatMessage{{Role: llm.ChatRoleAssistant, Content: openingGreeting}}
		e.persistTranscript(ctx, state.ConversationID, history)
		return &Response{
			ConversationID: state.ConversationID,
			Reply:          openingGreeting,
			Mode:           ModeAI,
			Timestamp:      time.Now().UTC(),
		}, nil
	}

	return e.ProcessMessage(ctx, MessageRequest{
		OrgID:          req.OrgID,
		AgentID:        req.AgentID,
		ConversationID: state.ConversationID,
		Message:        req.Message,
		Source:         req.Source,
	})
}

// ProcessMessage runs one inbound message through the turn pipeline.
func (e *Engine) ProcessMessage(ctx context.Context, req MessageRequest) (*Response, error) {
	started := time.Now()
	ctx, span := e.tracer.Start(ctx, "conversation.process_message",
		trace.WithAttributes(attribute.String("conversation.id", req.ConversationID)))
	defer span.End()

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, errors.New("conversation: message is required")
	}
	if req.ConversationID == "" {
		return nil, ErrConversationNotFound
	}

	state, err := e.states.Get(ctx, req.ConversationID)
	if err != nil {
		return nil, err
	}

	history, err := e.transcripts.Load(ctx, state.ConversationID)
	if err != nil {
		e.logger.Warn("transcript load failed, continuing with empty history",
			"error", err, "conversation_id", state.ConversationID)
		history = nil
	}
	userMsg := llm.ChatMessage{Role: llm.ChatRoleUser, Content: message}

	// A human owns the thread. Record the message but stay silent.
	if state.Mode != ModeAI {
		e.persistTranscript(ctx, state.ConversationID, append(history, userMsg))
		e.touch(ctx, state)
		e.observeTurn("none", turnOutcomeSuppressed, started)
		return &Response{
			ConversationID: state.ConversationID,
			Mode:           state.Mode,
			Timestamp:      time.Now().UTC(),
		}, nil
	}

	memory, err := e.memories.Load(ctx, state.ConversationID)
	if err != nil {
		return nil, err
	}

	attr := ledger.Attribution{
		OrgID:          state.OrgID,
		AgentID:        state.AgentID,
		ConversationID: state.ConversationID,
	}

	pending := qualification.SlotNone
	if memory != nil {
		pending = memory.NextSlot
	}
	category := e.classifier.Classify(ctx, history, message, pending, attr)
	span.SetAttributes(attribute.String("conversation.intent", string(category)))

	if category == intent.CategoryHandoff {
		return e.handoff(ctx, state, history, userMsg, started)
	}

	var (
		memoryDirty bool
		scored      *scoring.Result
	)
	if category == intent.CategoryBANT {
		if memory == nil {
			memory = qualification.NewMemory(state.ConversationID, state.AgentID)
			memoryDirty = true
		}
		update, err := e.extractor.Extract(ctx, append(history, userMsg), memory, attr)
		switch {
		case errors.Is(err, llm.ErrCompletionFailed):
			// Every tier is down; the reply call would fail the same way.
			return e.fallbackReply(ctx, state, history, userMsg, category, started)
		case err != nil:
			e.logger.Warn("slot extraction failed",
				"error", err, "conversation_id", state.ConversationID)
		default:
			if memory.Apply(update) {
				memoryDirty = true
			}
		}
		if memoryDirty {
			result := e.scoreMemory(ctx, memory)
			scored = &result
		}
	}

	reply, err := e.generateReply(ctx, category, memory, history, userMsg, attr)
	if err != nil {
		if errors.Is(err, llm.ErrCompletionFailed) {
			return e.fallbackReply(ctx, state, history, userMsg, category, started)
		}
		return nil, err
	}

	// Memory is persisted only on turns that fully complete, so a failed turn
	// leaves it exactly as loaded.
	if memoryDirty {
		if err := e.memories.Save(ctx, memory); err != nil {
			e.logger.Error("failed to persist qualification memory",
				"error", err, "conversation_id", state.ConversationID)
		}
		if scored != nil {
			e.maybeUpsertLead(ctx, state, memory, *scored)
		}
	}

	history = append(history, userMsg, llm.ChatMessage{Role: llm.ChatRoleAssistant, Content: reply})
	e.persistTranscript(ctx, state.ConversationID, history)
	e.touch(ctx, state)
	e.observeTurn(string(category), turnOutcomeReplied, started)

	return &Response{
		ConversationID: state.ConversationID,
		Reply:          reply,
		Mode:           state.Mode,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// GetHistory returns the stored transcript for a known conversation.
func (e *Engine) GetHistory(ctx context.Context, conversationID string) ([]llm.ChatMessage, error) {
	if _, err := e.states.Get(ctx, conversationID); err != nil {
		return nil, err
	}
	return e.transcripts.Load(ctx, conversationID)
}

// SetMode moves a conversation between AI and human control.
func (e *Engine) SetMode(ctx context.Context, conversationID string, mode Mode) error {
	if err := e.states.Touch(ctx, conversationID, mode); err != nil {
		return err
	}
	e.logger.Info("conversation mode changed", "conversation_id", conversationID, "mode", string(mode))
	return nil
}

func (e *Engine) handoff(ctx context.Context, state *State, history []llm.ChatMessage, userMsg llm.ChatMessage, started time.Time) (*Response, error) {
	state.Mode = ModeHandoffRequested
	history = append(history, userMsg, llm.ChatMessage{Role: llm.ChatRoleAssistant, Content: handoffAcknowledgement})
	e.persistTranscript(ctx, state.ConversationID, history)
	if err := e.states.Touch(ctx, state.ConversationID, state.Mode); err != nil {
		return nil, err
	}
	e.logger.Info("handoff requested", "conversation_id", state.ConversationID)
	e.observeTurn(string(intent.CategoryHandoff), turnOutcomeHandoff, started)
	return &Response{
		ConversationID: state.ConversationID,
		Reply:          handoffAcknowledgement,
		Mode:           state.Mode,
		Timestamp:      time.Now().UTC(),
	}, nil
}

// fallbackReply answers with a canned apology after every model tier failed.
// Qualification memory is not written on this path.
func (e *Engine) fallbackReply(ctx context.Context, state *State, history []llm.ChatMessage, userMsg llm.ChatMessage, category intent.Category, started time.Time) (*Response, error) {
	e.logger.Error("all model tiers failed, sending fallback reply",
		"conversation_id", state.ConversationID, "intent", string(category))

	history = append(history, userMsg, llm.ChatMessage{Role: llm.ChatRoleAssistant, Content: apologyReply})
	e.persistTranscript(ctx, state.ConversationID, history)
	e.touch(ctx, state)
	e.observeTurn(string(category), turnOutcomeFallback, started)
	return &Response{
		ConversationID: state.ConversationID,
		Reply:          apologyReply,
		Mode:           state.Mode,
		Timestamp:      time.Now().UTC(),
	}, nil
}

func (e *Engine) generateReply(ctx context.Context, category intent.Category, memory *qualification.Memory, history []llm.ChatMessage, userMsg llm.ChatMessage, attr ledger.Attribution) (string, error) {
	messages := append(history, userMsg)
	if len(messages) > replyContextMessages {
		messages = messages[len(messages)-replyContextMessages:]
	}

	resp, err := e.llm.Complete(ctx, llm.Request{
		Category:    ledger.CategoryReply,
		System:      replySystem(category, memory),
		Messages:    messages,
		MaxTokens:   e.replyMaxTokens,
		Temperature: 0.7,
		Attribution: attr,
	})
	if err != nil {
		return "", err
	}
	reply := strings.TrimSpace(resp.Text)
	if reply == "" {
		return "", fmt.Errorf("%w: model returned empty reply", llm.ErrCompletionFailed)
	}
	return reply, nil
}

func (e *Engine) scoreMemory(ctx context.Context, memory *qualification.Memory) scoring.Result {
	cfg, err := e.configs.Get(ctx, memory.AgentID)
	if err != nil && !errors.Is(err, scoring.ErrConfigNotFound) {
		e.logger.Warn("scoring config load failed, using default rubric",
			"error", err, "agent_id", memory.AgentID)
	}
	return e.scorer.Score(memory, cfg)
}

// maybeUpsertLead materializes a lead once the conversation warms up or the
// contact is captured. The repository upserts on (agent, conversation), so a
// conversation never yields duplicate leads.
func (e *Engine) maybeUpsertLead(ctx context.Context, state *State, memory *qualification.Memory, result scoring.Result) {
	if result.Tier == scoring.TierCold && !result.ContactComplete {
		return
	}
	lead := &leads.Lead{
		AgentID:        state.AgentID,
		ConversationID: state.ConversationID,
		Budget:         memory.Budget,
		Authority:      memory.Authority,
		Need:           memory.Need,
		Timeline:       memory.Timeline,
		Score:          result.Score,
		Tier:           string(result.Tier),
		Name:           memory.Contact.Name,
		Phone:          memory.Contact.Phone,
		Email:          memory.Contact.Email,
		Source:         state.Source,
	}
	if _, err := e.leads.Upsert(ctx, lead); err != nil {
		e.logger.Error("failed to upsert lead",
			"error", err, "conversation_id", state.ConversationID)
		return
	}
	e.logger.Info("lead upserted",
		"conversation_id", state.ConversationID,
		"score", result.Score,
		"tier", string(result.Tier),
	)
}

func (e *Engine) persistTranscript(ctx context.Context, conversationID string, history []llm.ChatMessage) {
	if len(history) > e.transcriptCap {
		history = history[len(history)-e.transcriptCap:]
	}
	if err := e.transcripts.Save(ctx, conversationID, history); err != nil {
		e.logger.Error("failed to persist transcript",
			"error", err, "conversation_id", conversationID)
	}
}

func (e *Engine) touch(ctx context.Context, state *State) {
	if err := e.states.Touch(ctx, state.ConversationID, state.Mode); err != nil {
		e.logger.Warn("failed to touch conversation state",
			"error", err, "conversation_id", state.ConversationID)
	}
}

func (e *Engine) observeTurn(category, outcome string, started time.Time) {
	if e.observer == nil {
		return
	}
	e.observer.ObserveTurn(category, outcome, time.Since(started).Seconds())
}
