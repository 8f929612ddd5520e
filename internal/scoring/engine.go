package scoring

import (
	"math"
	"strings"

	"github.com/realtyflow/leadqual/internal/qualification"
)

// Result is the scored outcome for one qualification memory.
type Result struct {
	Score           int  `json:"score"`
	Tier            Tier `json:"tier"`
	ContactComplete bool `json:"contact_complete"`
}

// Default rubric weights: budget/authority/need/timeline. Contact completeness
// is tracked separately when no custom config exists.
var defaultWeights = Weights{Budget: 30, Authority: 25, Need: 25, Timeline: 20}

// Engine applies the weighted rubric to canonical qualification values.
// Missing slots contribute zero for their dimension; partial qualification
// caps the achievable score, it never errors.
type Engine struct{}

// NewEngine creates a scoring engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Score computes a 0-100 score and tier. cfg nil selects the default rubric.
func (e *Engine) Score(memory *qualification.Memory, cfg *Config) Result {
	if memory == nil {
		return Result{Score: 0, Tier: TierCold}
	}
	if cfg == nil {
		return e.scoreDefault(memory)
	}
	return e.scoreCustom(memory, cfg)
}

func (e *Engine) scoreDefault(memory *qualification.Memory) Result {
	total := 0.0
	total += float64(defaultWeights.Budget) / 100 * defaultBudgetPoints(memory.Budget)
	total += float64(defaultWeights.Authority) / 100 * defaultAuthorityPoints(memory.Authority)
	total += float64(defaultWeights.Need) / 100 * defaultNeedPoints(memory.Need)
	total += float64(defaultWeights.Timeline) / 100 * defaultTimelinePoints(memory.Timeline)

	score := clampScore(total)
	return Result{
		Score:           score,
		Tier:            tierFor(score, DefaultThresholds()),
		ContactComplete: memory.Contact.Complete(),
	}
}

func (e *Engine) scoreCustom(memory *qualification.Memory, cfg *Config) Result {
	total := 0.0
	total += float64(cfg.Weights.Budget) / 100 * budgetCriterionPoints(cfg.Budget, memory.Budget)
	total += float64(cfg.Weights.Authority) / 100 * categoricalCriterionPoints(cfg.Authority, memory.Authority)
	total += float64(cfg.Weights.Need) / 100 * categoricalCriterionPoints(cfg.Need, memory.Need)
	total += float64(cfg.Weights.Timeline) / 100 * categoricalCriterionPoints(cfg.Timeline, memory.Timeline)
	total += float64(cfg.Weights.Contact) / 100 * contactPoints(memory.Contact)

	score := clampScore(total)
	return Result{
		Score:           score,
		Tier:            tierFor(score, cfg.Thresholds),
		ContactComplete: memory.Contact.Complete(),
	}
}

// tierFor compares the score against the ordered thresholds; a tie lands in
// the higher tier.
func tierFor(score int, t Thresholds) Tier {
	switch {
	case score >= t.Priority:
		return TierPriority
	case score >= t.Hot:
		return TierHot
	case score >= t.Warm:
		return TierWarm
	default:
		return TierCold
	}
}

// budgetCriterionPoints awards the first criterion whose [Min, Max) range
// contains the budget. A nil budget contributes zero regardless of rubric.
func budgetCriterionPoints(criteria []Criterion, budget *int64) float64 {
	if budget == nil {
		return 0
	}
	for _, c := range criteria {
		if c.Min != nil && *budget < *c.Min {
			continue
		}
		if c.Max != nil && *budget >= *c.Max {
			continue
		}
		return float64(c.Points)
	}
	return 0
}

// categoricalCriterionPoints awards the first criterion matching the value.
func categoricalCriterionPoints(criteria []Criterion, value *string) float64 {
	if value == nil || *value == "" {
		return 0
	}
	for _, c := range criteria {
		if c.Match == "*" || strings.EqualFold(c.Match, *value) {
			return float64(c.Points)
		}
	}
	return 0
}

func contactPoints(contact qualification.Contact) float64 {
	switch {
	case contact.Complete():
		return 100
	case contact.Name != "" || contact.Phone != "" || contact.Email != "":
		return 50
	default:
		return 0
	}
}

// Default per-dimension brackets.

func defaultBudgetPoints(budget *int64) float64 {
	if budget == nil {
		return 0
	}
	switch b := *budget; {
	case b >= 1_000_000:
		return 100
	case b >= 500_000:
		return 75
	case b >= 250_000:
		return 50
	case b > 0:
		return 25
	default:
		return 0
	}
}

func defaultAuthorityPoints(authority *string) float64 {
	if authority == nil {
		return 0
	}
	switch *authority {
	case qualification.AuthoritySole:
		return 100
	case qualification.AuthorityShared:
		return 70
	case qualification.AuthorityRepresentative:
		return 40
	default:
		return 0
	}
}

func defaultNeedPoints(need *string) float64 {
	if need == nil {
		return 0
	}
	switch *need {
	case qualification.NeedPrimaryResidence:
		return 100
	case qualification.NeedInvestment:
		return 90
	case qualification.NeedCommercial:
		return 80
	case qualification.NeedOther:
		return 50
	default:
		return 0
	}
}

func defaultTimelinePoints(timeline *string) float64 {
	if timeline == nil {
		return 0
	}
	switch *timeline {
	case qualification.TimelineImmediate:
		return 100
	case qualification.TimelineShort:
		return 75
	case qualification.TimelineMedium:
		return 50
	case qualification.TimelineLong:
		return 25
	default:
		return 0
	}
}

func clampScore(total float64) int {
	score := int(math.Round(total))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
