package ledger

import (
	"time"

	"github.com/google/uuid"
)

// Category labels what kind of model work an invocation performed.
type Category string

const (
	CategoryClassification Category = "classification"
	CategoryExtraction     Category = "bant_extraction"
	CategoryScoring        Category = "scoring"
	CategoryReply          Category = "reply"
	CategoryEmbedding      Category = "embedding"
)

// SentinelAttribution stands in for any attribution field the caller could not
// supply. Ledger writes are never skipped because attribution is incomplete.
const SentinelAttribution = "system"

// Attribution ties an invocation back to the tenant that caused it.
type Attribution struct {
	OrgID          string `json:"org_id"`
	AgentID        string `json:"agent_id"`
	ConversationID string `json:"conversation_id"`
	UserID         string `json:"user_id"`
}

// WithDefaults fills every empty field with the sentinel value.
func (a Attribution) WithDefaults() Attribution {
	if a.OrgID == "" {
		a.OrgID = SentinelAttribution
	}
	if a.AgentID == "" {
		a.AgentID = SentinelAttribution
	}
	if a.ConversationID == "" {
		a.ConversationID = SentinelAttribution
	}
	if a.UserID == "" {
		a.UserID = SentinelAttribution
	}
	return a
}

// InvocationRecord is one append-only ledger row per model call attempt,
// including failed attempts and fallback retries. Immutable once written;
// external analytics read this shape directly, so keep it stable.
type InvocationRecord struct {
	ID               string      `json:"id"`
	Tier             string      `json:"tier"`
	Model            string      `json:"model"`
	Category         Category    `json:"category"`
	PromptTokens     int32       `json:"prompt_tokens"`
	CachedTokens     int32       `json:"cached_tokens"`
	CompletionTokens int32       `json:"completion_tokens"`
	TotalTokens      int32       `json:"total_tokens"`
	CostUSD          float64     `json:"cost_usd"`
	LatencyMs        int64       `json:"latency_ms"`
	Success          bool        `json:"success"`
	Fallback         bool        `json:"fallback"`
	EstimatedUsage   bool        `json:"estimated_usage"`
	Attribution      Attribution `json:"attribution"`
	CreatedAt        time.Time   `json:"created_at"`
}

// Finalize assigns an ID and timestamp if missing and normalizes attribution.
func (r *InvocationRecord) Finalize() {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	r.Attribution = r.Attribution.WithDefaults()
	if r.TotalTokens == 0 {
		r.TotalTokens = r.PromptTokens + r.CompletionTokens
	}
}

// Filter narrows an aggregation query. Zero values mean "no constraint".
type Filter struct {
	OrgID    string
	AgentID  string
	Category Category
	From     time.Time
	To       time.Time
}

// Totals is the aggregate view consumed by analytics collaborators.
type Totals struct {
	Calls            int64   `json:"calls"`
	Failures         int64   `json:"failures"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	TotalTokens      int64   `json:"total_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}
