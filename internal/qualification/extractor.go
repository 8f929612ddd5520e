package qualification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/realtyflow/leadqual/internal/ledger"
	"github.com/realtyflow/leadqual/internal/llm"
	"github.com/realtyflow/leadqual/pkg/logging"
	"github.com/xeipuuv/gojsonschema"
)

// ErrMalformedExtraction indicates the structured response failed validation.
// It is recovered locally as "no new data" and never reaches the end user.
var ErrMalformedExtraction = errors.New("qualification: malformed extraction response")

type completer interface {
	Complete(ctx context.Context, req llm.Request) (llm.CompletionResponse, error)
}

const extractionSystemPrompt = `You extract real-estate lead qualification data from a conversation.
Read the transcript and report ONLY facts the prospect actually stated. Never guess.
For each dimension report:
- "mentioned": whether the prospect addressed it at all
- "value": the prospect's answer as a short quote, or null if they gave none
- "unanswerable": true only when the prospect explicitly declined or said they do not know
Dimensions: budget (amount they can spend), authority (who makes the purchase decision),
need (what kind of property and why), timeline (when they want to transact).
Also report any contact details (name, phone, email) the prospect shared.
Respond with JSON only, matching this shape:
{"budget":{"mentioned":false,"value":null,"unanswerable":false},
 "authority":{"mentioned":false,"value":null,"unanswerable":false},
 "need":{"mentioned":false,"value":null,"unanswerable":false},
 "timeline":{"mentioned":false,"value":null,"unanswerable":false},
 "contact":{"name":null,"phone":null,"email":null}}`

const extractionSchemaJSON = `{
	"type": "object",
	"required": ["budget", "authority", "need", "timeline"],
	"properties": {
		"budget": {"$ref": "#/definitions/slot"},
		"authority": {"$ref": "#/definitions/slot"},
		"need": {"$ref": "#/definitions/slot"},
		"timeline": {"$ref": "#/definitions/slot"},
		"contact": {
			"type": "object",
			"properties": {
				"name": {"type": ["string", "null"]},
				"phone": {"type": ["string", "null"]},
				"email": {"type": ["string", "null"]}
			}
		}
	},
	"definitions": {
		"slot": {
			"type": "object",
			"required": ["mentioned"],
			"properties": {
				"mentioned": {"type": "boolean"},
				"value": {"type": ["string", "null"]},
				"unanswerable": {"type": "boolean"}
			}
		}
	}
}`

var extractionSchema = gojsonschema.NewStringLoader(extractionSchemaJSON)

type extractedSlot struct {
	Mentioned    bool    `json:"mentioned"`
	Value        *string `json:"value"`
	Unanswerable bool    `json:"unanswerable"`
}

type extractedContact struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
}

type extractionPayload struct {
	Budget    extractedSlot     `json:"budget"`
	Authority extractedSlot     `json:"authority"`
	Need      extractedSlot     `json:"need"`
	Timeline  extractedSlot     `json:"timeline"`
	Contact   *extractedContact `json:"contact"`
}

// Extractor pulls structured qualification data out of conversation text via
// the model call orchestrator and normalizes it into canonical slot values.
type Extractor struct {
	llm    completer
	logger *logging.Logger
}

// NewExtractor creates an extractor backed by the orchestrator.
func NewExtractor(llmClient completer, logger *logging.Logger) *Extractor {
	if llmClient == nil {
		panic("qualification: llm completer cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Extractor{llm: llmClient, logger: logger}
}

// Extract asks the model for a strictly-typed update covering only the slots
// it could find in the transcript. A response that fails schema validation is
// treated as "nothing found": the pending slot simply gets re-asked next turn.
// Every call is accounted under the bant_extraction category, including
// zero-result calls.
func (e *Extractor) Extract(ctx context.Context, transcript []llm.ChatMessage, memory *Memory, attr ledger.Attribution) (Update, error) {
	resp, err := e.llm.Complete(ctx, llm.Request{
		Category:     ledger.CategoryExtraction,
		System:       []string{extractionSystemPrompt, memoryContext(memory)},
		Messages:     transcriptTail(transcript, 12),
		MaxTokens:    300,
		Temperature:  0,
		JSONResponse: true,
		Attribution:  attr,
	})
	if err != nil {
		// Both tiers failed. The ledger already holds the failed attempts;
		// the caller treats this like an empty extraction.
		return Update{}, err
	}

	payload, err := parseExtraction(resp.Text)
	if err != nil {
		e.logger.Warn("extraction response failed validation, ignoring",
			"error", err,
			"conversation_id", attr.ConversationID,
		)
		return Update{}, nil
	}

	return e.normalize(payload), nil
}

// parseExtraction locates the JSON object in the raw response and validates
// it against the extraction schema before decoding.
func parseExtraction(raw string) (extractionPayload, error) {
	content := strings.TrimSpace(raw)
	startIdx := strings.Index(content, "{")
	endIdx := strings.LastIndex(content, "}")
	if startIdx < 0 || endIdx <= startIdx {
		return extractionPayload{}, ErrMalformedExtraction
	}
	content = content[startIdx : endIdx+1]

	result, err := gojsonschema.Validate(extractionSchema, gojsonschema.NewStringLoader(content))
	if err != nil {
		return extractionPayload{}, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}
	if !result.Valid() {
		return extractionPayload{}, fmt.Errorf("%w: %v", ErrMalformedExtraction, result.Errors())
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return extractionPayload{}, fmt.Errorf("%w: %v", ErrMalformedExtraction, err)
	}
	return payload, nil
}

// normalize converts raw model values into canonical slot values. A raw value
// that fails deterministic normalization is dropped rather than stored dirty.
func (e *Extractor) normalize(p extractionPayload) Update {
	var update Update

	if p.Budget.Mentioned {
		bu := &BudgetUpdate{Unanswerable: p.Budget.Unanswerable}
		if p.Budget.Value != nil {
			if amount, ok := NormalizeBudget(*p.Budget.Value); ok {
				bu.Value = &amount
			}
		}
		if bu.Value != nil || bu.Unanswerable {
			update.Budget = bu
		}
	}
	update.Authority = normalizeSlot(p.Authority, NormalizeAuthority)
	update.Need = normalizeSlot(p.Need, NormalizeNeed)
	update.Timeline = normalizeSlot(p.Timeline, NormalizeTimeline)

	if p.Contact != nil {
		contact := Contact{
			Name:  derefTrim(p.Contact.Name),
			Phone: derefTrim(p.Contact.Phone),
			Email: derefTrim(p.Contact.Email),
		}
		if contact.Name != "" || contact.Phone != "" || contact.Email != "" {
			update.Contact = &contact
		}
	}
	return update
}

func normalizeSlot(raw extractedSlot, normalize func(string) (string, bool)) *SlotUpdate {
	if !raw.Mentioned {
		return nil
	}
	su := &SlotUpdate{Unanswerable: raw.Unanswerable}
	if raw.Value != nil {
		if canonical, ok := normalize(*raw.Value); ok {
			su.Value = &canonical
		}
	}
	if su.Value == nil && !su.Unanswerable {
		return nil
	}
	return su
}

// memoryContext tells the model what is already captured so it focuses on new
// information.
func memoryContext(m *Memory) string {
	if m == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("Already captured: ")
	wrote := false
	add := func(label string, discussed bool) {
		if discussed {
			if wrote {
				b.WriteString(", ")
			}
			b.WriteString(label)
			wrote = true
		}
	}
	add("budget", m.BudgetDiscussed)
	add("authority", m.AuthorityDiscussed)
	add("need", m.NeedDiscussed)
	add("timeline", m.TimelineDiscussed)
	if !wrote {
		b.WriteString("nothing yet")
	}
	if m.NextSlot != SlotNone {
		b.WriteString(". The question currently pending is about ")
		b.WriteString(string(m.NextSlot))
		b.WriteString(".")
	}
	return b.String()
}

func transcriptTail(transcript []llm.ChatMessage, n int) []llm.ChatMessage {
	if len(transcript) <= n {
		return transcript
	}
	return transcript[len(transcript)-n:]
}

func derefTrim(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
