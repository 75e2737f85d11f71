package profile

import "strings"

// Resolve maps free-text filing type, jurisdiction and entity type strings to
// a filing profile, or nil when nothing matches and the caller should fall
// back to LLM generation. Matching is deliberately dumb: lowercase, trim,
// substring containment, first match wins. No fuzzy matching, no scoring.
func Resolve(filingType, jurisdiction, entityType string) *FilingProfile {
	filing := normalize(filingType)
	state := normalize(jurisdiction)
	_ = normalize(entityType) // entity type does not influence resolution today

	if !strings.Contains(filing, "annual") {
		return nil
	}
	if strings.Contains(state, "california") || strings.Contains(state, "ca") {
		return annualReportCA
	}
	return annualReportGeneric
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
