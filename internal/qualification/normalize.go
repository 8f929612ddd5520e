package qualification

import (
	"regexp"
	"strconv"
	"strings"
)

// Canonical timeline buckets. Free-form phrases normalize into exactly one.
const (
	TimelineImmediate = "immediate"
	TimelineShort     = "1-3 months"
	TimelineMedium    = "3-6 months"
	TimelineLong      = "6+ months"
)

// Canonical authority values.
const (
	AuthoritySole           = "sole_decision_maker"
	AuthorityShared         = "shared_decision"
	AuthorityRepresentative = "representative"
)

// Canonical need values.
const (
	NeedPrimaryResidence = "primary_residence"
	NeedInvestment       = "investment"
	NeedCommercial       = "commercial"
	NeedOther            = "other"
)

var (
	budgetNumberRE = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)*)\s*(billion|bn|b|million|mil|mm|m|thousand|k)?`)
	digitsOnlyRE   = regexp.MustCompile(`^\d+$`)
	monthsAheadRE  = regexp.MustCompile(`(?i)(\d+)\s*(?:-\s*(\d+)\s*)?month`)
	yearsAheadRE   = regexp.MustCompile(`(?i)(\d+)\s*(?:-\s*(\d+)\s*)?year`)
	weeksAheadRE   = regexp.MustCompile(`(?i)(\d+)\s*(?:-\s*(\d+)\s*)?week`)
)

// NormalizeBudget parses a free-form budget phrase into a canonical numeric
// amount: "30M", "30 million", "$30,000,000" and "30000000" all yield
// 30000000. Normalizing an already-canonical value is a no-op.
func NormalizeBudget(raw string) (int64, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer("$", "", "usd", "", "~", "", "about", "", "around", "", "roughly", "", "up to", "").Replace(s)
	s = strings.TrimSpace(s)

	// Already canonical: a plain digit string round-trips unchanged.
	if digitsOnlyRE.MatchString(s) {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil || v <= 0 {
			return 0, false
		}
		return v, true
	}

	m := budgetNumberRE.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	numText := strings.ReplaceAll(m[1], ",", "")
	value, err := strconv.ParseFloat(numText, 64)
	if err != nil {
		return 0, false
	}

	multiplier := 1.0
	switch m[2] {
	case "billion", "bn", "b":
		multiplier = 1e9
	case "million", "mil", "mm", "m":
		multiplier = 1e6
	case "thousand", "k":
		multiplier = 1e3
	default:
		// A bare small number in budget context usually means millions
		// ("my budget is 30"). Anything over 10000 is taken literally.
		if value < 10000 && strings.Contains(s, "budget") {
			multiplier = 1e6
		}
	}

	amount := int64(value * multiplier)
	if amount <= 0 {
		return 0, false
	}
	return amount, true
}

// NormalizeTimeline maps a relative time phrase to a coarse bucket.
// Canonical bucket names pass through unchanged.
func NormalizeTimeline(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	switch s {
	case TimelineImmediate, TimelineShort, TimelineMedium, TimelineLong:
		return s, true
	}

	for _, kw := range []string{"asap", "immediately", "right away", "now", "this week", "this month", "within a month", "within 1 month", "next month", "urgent"} {
		if strings.Contains(s, kw) {
			return TimelineImmediate, true
		}
	}
	if strings.Contains(s, "this quarter") || strings.Contains(s, "soon") || strings.Contains(s, "couple of months") || strings.Contains(s, "few months") {
		return TimelineShort, true
	}
	if strings.Contains(s, "this year") || strings.Contains(s, "end of the year") || strings.Contains(s, "half a year") {
		return TimelineMedium, true
	}
	for _, kw := range []string{"next year", "no rush", "someday", "eventually", "not sure when", "just looking"} {
		if strings.Contains(s, kw) {
			return TimelineLong, true
		}
	}

	if m := weeksAheadRE.FindStringSubmatch(s); m != nil {
		return TimelineImmediate, true
	}
	if m := monthsAheadRE.FindStringSubmatch(s); m != nil {
		months, _ := strconv.Atoi(m[1])
		if m[2] != "" {
			if upper, err := strconv.Atoi(m[2]); err == nil {
				months = upper
			}
		}
		switch {
		case months <= 1:
			return TimelineImmediate, true
		case months <= 3:
			return TimelineShort, true
		case months <= 6:
			return TimelineMedium, true
		default:
			return TimelineLong, true
		}
	}
	if yearsAheadRE.MatchString(s) {
		return TimelineLong, true
	}

	return "", false
}

// NormalizeAuthority maps a decision-authority phrase to a canonical value.
func NormalizeAuthority(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	switch s {
	case AuthoritySole, AuthorityShared, AuthorityRepresentative:
		return s, true
	}

	for _, kw := range []string{"sole owner", "just me", "only me", "my decision", "i decide", "i'm the owner", "i am the owner", "myself", "on my own", "yes"} {
		if strings.Contains(s, kw) || s == "me" {
			return AuthoritySole, true
		}
	}
	for _, kw := range []string{"spouse", "wife", "husband", "partner", "family", "together", "we decide", "co-own", "jointly", "both of us"} {
		if strings.Contains(s, kw) {
			return AuthorityShared, true
		}
	}
	for _, kw := range []string{"on behalf", "my boss", "my client", "the company", "representative", "broker", "assistant", "for someone"} {
		if strings.Contains(s, kw) {
			return AuthorityRepresentative, true
		}
	}
	return "", false
}

// NormalizeNeed maps a stated purpose to a canonical need value.
func NormalizeNeed(raw string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "", false
	}

	switch s {
	case NeedPrimaryResidence, NeedInvestment, NeedCommercial, NeedOther:
		return s, true
	}

	for _, kw := range []string{"live in", "living", "family home", "move in", "moving", "primary residence", "our home", "my home", "relocat", "first home"} {
		if strings.Contains(s, kw) {
			return NeedPrimaryResidence, true
		}
	}
	for _, kw := range []string{"invest", "rental", "rent out", "flip", "portfolio", "airbnb", "passive income"} {
		if strings.Contains(s, kw) {
			return NeedInvestment, true
		}
	}
	for _, kw := range []string{"office", "commercial", "shop", "warehouse", "retail", "business premises"} {
		if strings.Contains(s, kw) {
			return NeedCommercial, true
		}
	}
	return NeedOther, true
}

var (
	yesRE      = regexp.MustCompile(`(?i)^\s*(yes|yeah|yep|yup|sure|correct|of course|absolutely|si|da)\b`)
	noRE       = regexp.MustCompile(`(?i)^\s*(no|nope|nah|not really|negative)\b`)
	numericRE  = regexp.MustCompile(`(?i)[\$€£]?\s*\d+(?:[.,]\d+)*\s*(?:billion|bn|b|million|mil|mm|m|thousand|k)?\b`)
	durationRE = regexp.MustCompile(`(?i)\b(\d+\s*(?:-\s*\d+\s*)?(?:day|week|month|year)s?|asap|immediately|right away|next (?:week|month|year)|this (?:week|month|quarter|year)|soon|no rush)\b`)
)

// MatchesAnswerShape reports whether a message looks like a plausible direct
// answer to the pending slot: a number for budget, a yes/no or ownership
// phrase for authority, a short duration phrase for timeline, short free text
// for need. Used to keep qualification flows from being silently abandoned.
func MatchesAnswerShape(slot Slot, message string) bool {
	msg := strings.TrimSpace(message)
	if msg == "" {
		return false
	}
	switch slot {
	case SlotBudget:
		if numericRE.MatchString(msg) {
			return true
		}
		_, ok := NormalizeBudget(msg)
		return ok
	case SlotAuthority:
		if yesRE.MatchString(msg) || noRE.MatchString(msg) {
			return true
		}
		_, ok := NormalizeAuthority(msg)
		return ok
	case SlotNeed:
		if yesRE.MatchString(msg) || noRE.MatchString(msg) {
			return true
		}
		// A short phrase answering "what are you looking for".
		return len(strings.Fields(msg)) <= 8
	case SlotTimeline:
		if durationRE.MatchString(msg) {
			return true
		}
		_, ok := NormalizeTimeline(msg)
		return ok
	}
	return false
}
