package intent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/realtyflow/leadqual/internal/qualification"
	"github.com/realtyflow/leadqual/pkg/logging"
)

const maxContextTurns = 5

const classifierSystemPrompt = `You classify the newest message in a real-estate chat into exactly one category:
GREETING - a salutation with no other content
BANT - anything about budget, decision authority, property needs, or purchase timeline, including short answers to a qualification question
GENERAL - small talk or anything that fits no other category
ESTIMATION_REQUEST - the prospect wants a price estimate or valuation of a property
KNOWLEDGE_LOOKUP - a factual question about listings, process, fees, or documents
HANDOFF_REQUEST - the prospect wants a human agent
Answer with the category name only.`

type completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.CompletionResponse, error)
}

// Classifier assigns one intent category per inbound message. The model
// decides; the deterministic matcher only supplies a hint and the fallback.
// retries counts re-asks after the first attempt, so retries=3 means up to
// four model calls per message.
type Classifier struct {
	llm     completer
	logger  *logging.Logger
	retries int
	backoff time.Duration
}

// NewClassifier creates an intent classifier backed by the orchestrator.
func NewClassifier(llmClient completer, logger *logging.Logger, retries int, backoff time.Duration) *Classifier {
	if llmClient == nil {
		panic("intent: llm completer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if retries <= 0 {
		retries = 3
	}
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}
	return &Classifier{llm: llmClient, logger: logger, retries: retries, backoff: backoff}
}

// Classify returns exactly one category for the newest message. It never
// fails: when the model cannot produce a usable answer after bounded retries,
// the pattern hint's candidate is used and the fallback is logged.
//
// When a qualification flow is mid-slot and the message matches the pending
// slot's expected answer shape, a non-BANT classification is forced back to
// BANT so the flow is not silently abandoned.
func (c *Classifier) Classify(ctx context.Context, history []llm.ChatMessage, message string, pendingSlot qualification.Slot, attr ledger.Attribution) Category {
	hint := MatchPattern(message)

	category, ok := c.classifyWithModel(ctx, history, message, hint, attr)
	if !ok {
		c.logger.Warn("intent model classification unavailable, using pattern fallback",
			"fallback_category", string(hint.Category),
			"confidence", hint.Confidence,
			"conversation_id", attr.ConversationID,
		)
		category = hint.Category
	}

	if pendingSlot != qualification.SlotNone && category != CategoryBANT &&
		qualification.MatchesAnswerShape(pendingSlot, message) {
		c.logger.Debug("forcing BANT for pending qualification slot",
			"pending_slot", string(pendingSlot),
			"model_category", string(category),
			"conversation_id", attr.ConversationID,
		)
		return CategoryBANT
	}
	return category
}

func (c *Classifier) classifyWithModel(ctx context.Context, history []llm.ChatMessage, message string, hint Hint, attr ledger.Attribution) (Category, bool) {
	messages := contextTail(history, maxContextTurns)
	messages = append(messages, llm.ChatMessage{
		Role: llm.ChatRoleUser,
		Content: fmt.Sprintf("Newest message: %q\nPattern matcher hint: %s (confidence %.1f)\nCategory:",
			message, hint.Category, hint.Confidence),
	})

	backoff := c.backoff
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", false
			case <-time.After(backoff):
			}
			if backoff < 4*c.backoff {
				backoff *= 2
			}
		}

		resp, err := c.llm.Complete(ctx, llm.Request{
			Category:    ledger.CategoryClassification,
			System:      []string{classifierSystemPrompt},
			Messages:    messages,
			MaxTokens:   10,
			Temperature: 0,
			Attribution: attr,
		})
		if err != nil {
			// Orchestrator exhausted both tiers; retrying here would only
			// repeat the same failure.
			return "", false
		}
		if category, ok := parseCategory(resp.Text); ok {
			return category, true
		}
		c.logger.Debug("intent model returned malformed category, retrying",
			"answer", strings.TrimSpace(resp.Text),
			"attempt", attempt+1,
		)
	}
	return "", false
}

func contextTail(history []llm.ChatMessage, n int) []llm.ChatMessage {
	filtered := make([]llm.ChatMessage, 0, len(history))
	for _, msg := range history {
		if msg.Role == llm.ChatRoleSystem {
			continue
		}
		filtered = append(filtered, msg)
	}
	if len(filtered) > n {
		filtered = filtered[len(filtered)-n:]
	}
	out := make([]llm.ChatMessage, len(filtered), len(filtered)+1)
	copy(out, filtered)
	return out
}
