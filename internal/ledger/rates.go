package ledger

// Rate holds USD prices per 1K tokens for one model tier. CachedInputPer1K is
// the discounted price some providers bill for cache-hit prompt tokens; zero
// means no discount applies.
type Rate struct {
	InputPer1K       float64
	OutputPer1K      float64
	CachedInputPer1K float64
}

// RateTable maps tier names to billing rates.
type RateTable map[string]Rate

// DefaultRates covers the three standard tiers. Override per deployment when
// provider pricing changes.
func DefaultRates() RateTable {
	return RateTable{
		"economy":  {InputPer1K: 0.00015, OutputPer1K: 0.0006, CachedInputPer1K: 0.000075},
		"standard": {InputPer1K: 0.0025, OutputPer1K: 0.01, CachedInputPer1K: 0.00125},
		"premium":  {InputPer1K: 0.0011, OutputPer1K: 0.0044},
		// Embedding calls only bill input tokens.
		"embedding": {InputPer1K: 0.00002},
	}
}

// Cost prices an attempt's token counts against the tier's rate. Unknown tiers
// cost zero rather than failing: an accounting gap must never abort a turn.
func (t RateTable) Cost(tier string, promptTokens, completionTokens, cachedPromptTokens int32) float64 {
	rate, ok := t[tier]
	if !ok {
		return 0
	}
	billedPrompt := promptTokens - cachedPromptTokens
	if billedPrompt < 0 {
		billedPrompt = 0
	}
	cost := float64(billedPrompt) / 1000 * rate.InputPer1K
	cost += float64(completionTokens) / 1000 * rate.OutputPer1K
	if cachedPromptTokens > 0 {
		cachedRate := rate.CachedInputPer1K
		if cachedRate == 0 {
			cachedRate = rate.InputPer1K
		}
		cost += float64(cachedPromptTokens) / 1000 * cachedRate
	}
	return cost
}
