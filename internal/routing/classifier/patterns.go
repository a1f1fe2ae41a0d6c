// internal/routing/classifier/patterns.go
package classifier

import (
	"regexp"

	"routing-engine/internal/models"
)

// categoryRules groups the compiled patterns of one sensitivity category with
// its per-match severity. Matches within a category sum without cap; a long
// payload full of personal data scores accordingly.
type categoryRules struct {
	category models.PatternCategory
	severity float64
	patterns []*regexp.Regexp
}

const (
	severityCriticalSecret = 10.0
	severityPersonalData   = 5.0
	severityBusinessLogic  = 3.0
)

// defaultRules returns the shipped pattern set in a fixed evaluation order so
// matchedCategories output is deterministic.
func defaultRules() []categoryRules {
	return []categoryRules{
		{
			category: models.CategoryCriticalSecret,
			severity: severityCriticalSecret,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token)`),
				regexp.MustCompile(`(?i)password\s*[:=]\s*\S+`),
				regexp.MustCompile(`-----BEGIN [A-Z ]*PRIVATE KEY-----`),
				regexp.MustCompile(`(?i)(postgres|postgresql|mysql|mongodb(\+srv)?|redis)://[^\s/]+:[^\s@]+@`),
				regexp.MustCompile(`\bAKIA[0-9A-Z]{16}\b`),
				regexp.MustCompile(`(?i)bearer\s+[a-z0-9\-_.~+/]+=*`),
			},
		},
		{
			category: models.CategoryPersonalData,
			severity: severityPersonalData,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`),
				regexp.MustCompile(`\+?\d[\d\s\-()]{8,}\d`),
				regexp.MustCompile(`\b(?:\d[ -]?){13,16}\b`),
				regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`),
			},
		},
		{
			category: models.CategoryBusinessLogic,
			severity: severityBusinessLogic,
			patterns: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(proprietary|confidential|trade\s+secrets?)\b`),
				regexp.MustCompile(`(?i)\b(business\s+logic|revenue|pricing\s+model)\b`),
				regexp.MustCompile(`(?i)\binternal\s+(use\s+)?only\b`),
			},
		},
	}
}
