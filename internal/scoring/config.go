package scoring

import (
	"errors"
	"fmt"
	"strings"
)

// Tier classifies a scored lead.
type Tier string

const (
	TierCold     Tier = "cold"
	TierWarm     Tier = "warm"
	TierHot      Tier = "hot"
	TierPriority Tier = "priority"
)

// ErrInvalidConfig is returned when a scoring config violates the weight-sum
// or threshold-ordering invariants. Invalid writes are rejected at the write
// boundary, never silently clamped.
var ErrInvalidConfig = errors.New("scoring: invalid config")

// Weights are percentage shares per dimension and MUST sum to exactly 100.
type Weights struct {
	Budget    int `json:"budget"`
	Authority int `json:"authority"`
	Need      int `json:"need"`
	Timeline  int `json:"timeline"`
	Contact   int `json:"contact"`
}

// Criterion is one rubric rule. Budget criteria use the numeric range
// [Min, Max); Max nil means unbounded. Categorical criteria use Match, where
// "*" matches any non-empty value.
type Criterion struct {
	Label  string `json:"label"`
	Match  string `json:"match,omitempty"`
	Min    *int64 `json:"min,omitempty"`
	Max    *int64 `json:"max,omitempty"`
	Points int    `json:"points"`
}

// Thresholds are the ascending tier cut-offs. A score equal to a threshold
// lands in the higher tier.
type Thresholds struct {
	Warm     int `json:"warm"`
	Hot      int `json:"hot"`
	Priority int `json:"priority"`
}

// Config is an agent's custom rubric. Absence of a config means the default
// rubric applies.
type Config struct {
	AgentID    string      `json:"agent_id"`
	Weights    Weights     `json:"weights"`
	Budget     []Criterion `json:"budget"`
	Authority  []Criterion `json:"authority"`
	Need       []Criterion `json:"need"`
	Timeline   []Criterion `json:"timeline"`
	Thresholds Thresholds  `json:"thresholds"`
}

// Validate enforces the write-boundary invariants.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.AgentID) == "" {
		return fmt.Errorf("%w: agent id is required", ErrInvalidConfig)
	}
	sum := c.Weights.Budget + c.Weights.Authority + c.Weights.Need + c.Weights.Timeline + c.Weights.Contact
	if sum != 100 {
		return fmt.Errorf("%w: weights must sum to exactly 100, got %d", ErrInvalidConfig, sum)
	}
	for _, w := range []int{c.Weights.Budget, c.Weights.Authority, c.Weights.Need, c.Weights.Timeline, c.Weights.Contact} {
		if w < 0 {
			return fmt.Errorf("%w: weights cannot be negative", ErrInvalidConfig)
		}
	}
	t := c.Thresholds
	if !(t.Warm <= t.Hot && t.Hot <= t.Priority) {
		return fmt.Errorf("%w: thresholds must satisfy warm <= hot <= priority, got %d/%d/%d",
			ErrInvalidConfig, t.Warm, t.Hot, t.Priority)
	}
	if t.Warm < 0 || t.Priority > 100 {
		return fmt.Errorf("%w: thresholds must lie within 0..100", ErrInvalidConfig)
	}
	for _, group := range [][]Criterion{c.Budget, c.Authority, c.Need, c.Timeline} {
		for _, criterion := range group {
			if criterion.Points < 0 || criterion.Points > 100 {
				return fmt.Errorf("%w: criterion %q points must lie within 0..100", ErrInvalidConfig, criterion.Label)
			}
		}
	}
	return nil
}

// DefaultThresholds used by the default rubric.
func DefaultThresholds() Thresholds {
	return Thresholds{Warm: 40, Hot: 60, Priority: 80}
}
