// internal/routing/anonymizer/anonymizer.go
package anonymizer

import (
	"fmt"
	"regexp"
	"strings"
)

// rule pairs a pattern with the placeholder family its matches map to.
type rule struct {
	label   string
	pattern *regexp.Regexp
}

// Evaluation order matters: credentials first so an API key inside a URL is
// scrubbed as a credential, not as part of the URL.
var rules = []rule{
	{"CREDENTIAL", regexp.MustCompile(`(?i)(api[_-]?key|secret[_-]?key|access[_-]?token|password)\s*[:=]\s*\S+`)},
	{"EMAIL", regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)},
	{"URL", regexp.MustCompile(`https?://[^\s"']+`)},
	{"PATH", regexp.MustCompile(`(?:/[A-Za-z0-9._-]+){2,}`)},
	{"IP", regexp.MustCompile(`\b(?:\d{1,3}\.){3}\d{1,3}\b`)},
}

// Result carries the scrubbed text and the mapping needed to restore the
// original values in a cloud response.
type Result struct {
	Content  string
	Mapping  map[string]string // placeholder -> original
	Replaced int
}

// Anonymize replaces sensitive spans with indexed placeholders. Identical
// spans map to the same placeholder so the substitution is deterministic
// and reversible.
func Anonymize(content string) Result {
	mapping := make(map[string]string)
	seen := make(map[string]string) // original -> placeholder
	replaced := 0

	out := content
	for _, r := range rules {
		idx := 0
		out = r.pattern.ReplaceAllStringFunc(out, func(match string) string {
			if isPlaceholder(match) {
				return match
			}
			if ph, ok := seen[match]; ok {
				replaced++
				return ph
			}
			idx++
			ph := fmt.Sprintf("[%s_%d]", r.label, idx)
			seen[match] = ph
			mapping[ph] = match
			replaced++
			return ph
		})
	}

	return Result{Content: out, Mapping: mapping, Replaced: replaced}
}

// Restore reapplies the original values to a response that may echo the
// placeholders back.
func Restore(content string, mapping map[string]string) string {
	out := content
	for ph, original := range mapping {
		out = strings.ReplaceAll(out, ph, original)
	}
	return out
}

func isPlaceholder(s string) bool {
	return strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")
}
