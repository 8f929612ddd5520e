package intent

import "strings"

// Category is one of the fixed, mutually exclusive intent classes.
type Category string

const (
	CategoryGreeting   Category = "GREETING"
	CategoryBANT       Category = "BANT"
	CategoryGeneral    Category = "GENERAL"
	CategoryEstimation Category = "ESTIMATION_REQUEST"
	CategoryKnowledge  Category = "KNOWLEDGE_LOOKUP"
	CategoryHandoff    Category = "HANDOFF_REQUEST"
)

var allCategories = []Category{
	CategoryGreeting,
	CategoryBANT,
	CategoryGeneral,
	CategoryEstimation,
	CategoryKnowledge,
	CategoryHandoff,
}

// parseCategory finds a known category token inside a model answer.
func parseCategory(raw string) (Category, bool) {
	text := strings.ToUpper(strings.TrimSpace(raw))
	if text == "" {
		return "", false
	}
	text = strings.Trim(text, "\"'`.")
	for _, c := range allCategories {
		if text == string(c) {
			return c, true
		}
	}
	// Tolerate answers like "Category: BANT" but reject anything mentioning
	// more than one category.
	var found Category
	for _, c := range allCategories {
		if strings.Contains(text, string(c)) {
			if found != "" && found != c {
				return "", false
			}
			// GENERAL is a substring match hazard only against itself; the
			// fixed set has no overlapping names.
			found = c
		}
	}
	if found == "" {
		return "", false
	}
	return found, true
}
