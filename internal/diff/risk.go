package diff

import "regexp"

// Rule attaches a review note to clause text matching Pattern.
type Rule struct {
	Category string
	Pattern  *regexp.Regexp
	Note     string
}

// Rules is evaluated top to bottom; the first matching rule wins, so a clause
// mentioning both indemnity and termination is reported as indemnity.
var Rules = []Rule{
	{"indemnification", regexp.MustCompile(`(?i)indemnif(y|ication)`), "Broad indemnity; confirm scope and carve-outs."},
	{"liability-cap", regexp.MustCompile(`(?i)liability\s+cap|cap on liability|limitation of liability`), "Liability cap changed; check multiples and exclusions."},
	{"termination", regexp.MustCompile(`(?i)termination|notice period`), "Termination or notice terms altered."},
	{"governing-law", regexp.MustCompile(`(?i)jurisdiction|governing law|venue`), "Governing law or venue modified."},
	{"ip-ownership", regexp.MustCompile(`(?i)assignment|ip\s+ownership|intellectual property`), "Ownership or licensing terms modified."},
	{"confidentiality", regexp.MustCompile(`(?i)confidential`), "Confidentiality duration or scope changed."},
	{"restrictive-covenant", regexp.MustCompile(`(?i)non-?compete|non-?solicit`), "Restrictive covenant updated."},
}

// RiskNote returns the note of the first rule matching text, or "".
func RiskNote(text string) string {
	if r, ok := Match(text); ok {
		return r.Note
	}
	return ""
}

// Match returns the first rule matching text.
func Match(text string) (Rule, bool) {
	for _, r := range Rules {
		if r.Pattern.MatchString(text) {
			return r, true
		}
	}
	return Rule{}, false
}
