package intent

import (
	"regexp"
	"strings"
)

// Hint is the deterministic pattern matcher's candidate. It is an input to
// the model prompt and the fallback when the model cannot answer, never an
// override of a valid model classification.
type Hint struct {
	Category   Category
	Confidence float64
}

var (
	greetingRE = regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good (morning|afternoon|evening)|greetings|hola)\b[\s!.,]*$`)
	handoffRE  = regexp.MustCompile(`(?i)\b(human|real (person|agent)|speak (to|with) (someone|an? agent)|talk (to|with) (someone|a person)|stop (the )?bot|operator|representative)\b`)
	estimateRE = regexp.MustCompile(`(?i)\b(estimate|valuation|apprais|how much is (my|the)|what('| i)s (my|the) (house|home|flat|apartment|property) worth|market value)\b`)
	bantRE     = regexp.MustCompile(`(?i)\b(budget|afford|price range|spend|financing|mortgage|pre-?approved|decision|timeline|time ?frame|looking (for|to buy)|move in|bedrooms?|investment property)\b`)
	moneyRE    = regexp.MustCompile(`(?i)[\$€£]\s*\d|\b\d+(?:[.,]\d+)?\s*(million|mil|k|m)\b`)
	lookupRE   = regexp.MustCompile(`(?i)\b(what (is|are)|how (does|do)|tell me about|difference between|explain|fees?|commission|process|documents?|paperwork)\b`)
)

// MatchPattern runs the lightweight deterministic matcher over a message and
// returns a candidate category with a confidence score.
func MatchPattern(message string) Hint {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return Hint{Category: CategoryGeneral, Confidence: 0.2}
	}

	switch {
	case handoffRE.MatchString(msg):
		return Hint{Category: CategoryHandoff, Confidence: 0.9}
	case greetingRE.MatchString(msg):
		return Hint{Category: CategoryGreeting, Confidence: 0.9}
	case estimateRE.MatchString(msg):
		return Hint{Category: CategoryEstimation, Confidence: 0.8}
	case bantRE.MatchString(msg), moneyRE.MatchString(msg):
		return Hint{Category: CategoryBANT, Confidence: 0.7}
	case lookupRE.MatchString(msg):
		return Hint{Category: CategoryKnowledge, Confidence: 0.5}
	}
	return Hint{Category: CategoryGeneral, Confidence: 0.3}
}
