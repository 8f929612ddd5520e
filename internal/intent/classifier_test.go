package intent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/realtyflow/leadqual/internal/qualification"
)

// sequencedCompleter returns one scripted result per call, in order.
type sequencedCompleter struct {
	answers  []string
	errs     []error
	calls    int
	requests []llm.Request
}

func (c *sequencedCompleter) Complete(ctx context.Context, req llm.Request) (llm.CompletionResponse, error) {
	c.requests = append(c.requests, req)
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return llm.CompletionResponse{}, c.errs[i]
	}
	if i < len(c.answers) {
		return llm.CompletionResponse{Text: c.answers[i]}, nil
	}
	return llm.CompletionResponse{Text: "GENERAL"}, nil
}

func newTestClassifier(c completer) *Classifier {
	return NewClassifier(c, nil, 3, time.Millisecond)
}

func TestClassifyUsesModelAnswer(t *testing.T) {
	completer := &sequencedCompleter{answers: []string{"KNOWLEDGE_LOOKUP"}}
	c := newTestClassifier(completer)

	// The pattern matcher would call this BANT; the model answer wins.
	got := c.Classify(context.Background(), nil, "what does pre-approved mean?", qualification.SlotNone, ledger.Attribution{})
	if got != CategoryKnowledge {
		t.Fatalf("expected model answer to win, got %s", got)
	}
	if completer.calls != 1 {
		t.Fatalf("expected a single model call, got %d", completer.calls)
	}
	if completer.requests[0].Category != ledger.CategoryClassification {
		t.Fatalf("expected classification ledger category, got %s", completer.requests[0].Category)
	}
}

func TestClassifyRetriesMalformedAnswers(t *testing.T) {
	completer := &sequencedCompleter{answers: []string{"houses, probably", "still unsure", "BANT"}}
	c := newTestClassifier(completer)

	got := c.Classify(context.Background(), nil, "our budget is 500k", qualification.SlotNone, ledger.Attribution{})
	if got != CategoryBANT {
		t.Fatalf("expected parsed answer after retries, got %s", got)
	}
	if completer.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", completer.calls)
	}
}

func TestClassifySucceedsOnFinalRetry(t *testing.T) {
	completer := &sequencedCompleter{answers: []string{"nope", "nope", "nope", "BANT"}}
	c := newTestClassifier(completer)

	got := c.Classify(context.Background(), nil, "our budget is 500k", qualification.SlotNone, ledger.Attribution{})
	if got != CategoryBANT {
		t.Fatalf("expected answer from third retry, got %s", got)
	}
	if completer.calls != 4 {
		t.Fatalf("expected initial attempt plus 3 retries, got %d calls", completer.calls)
	}
}

func TestClassifyFallsBackToPatternHint(t *testing.T) {
	completer := &sequencedCompleter{answers: []string{"nope", "nope", "nope", "nope"}}
	c := newTestClassifier(completer)

	got := c.Classify(context.Background(), nil, "I want to talk to a person", qualification.SlotNone, ledger.Attribution{})
	if got != CategoryHandoff {
		t.Fatalf("expected pattern fallback, got %s", got)
	}
	if completer.calls != 4 {
		t.Fatalf("expected retries exhausted after 4 calls, got %d", completer.calls)
	}
}

func TestClassifyOrchestratorErrorSkipsRetries(t *testing.T) {
	completer := &sequencedCompleter{errs: []error{errors.New("both tiers down")}}
	c := newTestClassifier(completer)

	got := c.Classify(context.Background(), nil, "hello!", qualification.SlotNone, ledger.Attribution{})
	if got != CategoryGreeting {
		t.Fatalf("expected pattern fallback, got %s", got)
	}
	if completer.calls != 1 {
		t.Fatalf("orchestrator failure should not be retried, got %d calls", completer.calls)
	}
}

func TestClassifyForcesBANTForPendingSlotAnswer(t *testing.T) {
	completer := &sequencedCompleter{answers: []string{"GENERAL"}}
	c := newTestClassifier(completer)

	got := c.Classify(context.Background(), nil, "around 2 million", qualification.SlotBudget, ledger.Attribution{})
	if got != CategoryBANT {
		t.Fatalf("expected forced BANT for a pending-slot answer, got %s", got)
	}
}

func TestClassifyDoesNotForceBANTForUnrelatedMessage(t *testing.T) {
	completer := &sequencedCompleter{answers: []string{"HANDOFF_REQUEST"}}
	c := newTestClassifier(completer)

	got := c.Classify(context.Background(), nil, "just give me a human already", qualification.SlotBudget, ledger.Attribution{})
	if got != CategoryHandoff {
		t.Fatalf("expected handoff preserved, got %s", got)
	}
}

func TestClassifyContextTailDropsSystemMessages(t *testing.T) {
	completer := &sequencedCompleter{answers: []string{"GENERAL"}}
	c := newTestClassifier(completer)

	history := []llm.ChatMessage{
		{Role: llm.ChatRoleSystem, Content: "persona"},
		{Role: llm.ChatRoleUser, Content: "hi"},
		{Role: llm.ChatRoleAssistant, Content: "hello"},
	}
	c.Classify(context.Background(), history, "ok", qualification.SlotNone, ledger.Attribution{})

	msgs := completer.requests[0].Messages
	// Two history turns plus the newest-message envelope.
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	for _, m := range msgs {
		if m.Role == llm.ChatRoleSystem {
			t.Fatalf("system message leaked into classifier context")
		}
	}
}
