// Package prompt builds the instruction document sent to the completion
// service. Every free-text value inserted into the prompt is sanitized first:
// the service's reply is parsed by framing, so user-controlled text must not
// be able to smuggle instructions or fake that framing.
package prompt

import (
	"regexp"
	"strings"
)

// Per-field truncation budgets. Resume text gets a far larger budget than
// short profile fields so multi-employer history survives sanitization.
const (
	MaxShortField = 500
	MaxJobContext = 4000
	MaxResumeText = 8000
)

// injectionPatterns match common instruction-injection phrasings embedded in
// user-supplied text. Matches are replaced, not merely flagged.
var injectionPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)ignore\s+(all\s+)?(previous|prior|above|earlier)\s+(instructions|prompts|directions)`),
	regexp.MustCompile(`(?i)disregard\s+(all\s+)?(previous|prior|above|earlier)\s+(instructions|prompts|directions)`),
	regexp.MustCompile(`(?i)forget\s+(everything|all)\s+(above|before)`),
	regexp.MustCompile(`(?i)you\s+are\s+now\s+`),
	regexp.MustCompile(`(?i)new\s+system\s+prompt`),
	regexp.MustCompile(`(?i)respond\s+only\s+with`),
}

var (
	controlChars = regexp.MustCompile("[\x00-\x08\x0b\x0c\x0e-\x1f\x7f]")
	spaceRuns    = regexp.MustCompile(`[ \t]+`)
	newlineRuns  = regexp.MustCompile(`\n{3,}`)
)

// Sanitize cleans one free-text value for prompt insertion: control
// characters stripped, whitespace collapsed, injection phrasings neutralized,
// code-fence and brace delimiters removed (they could be confused with the
// expected output framing), and the result truncated to maxLen runes.
func Sanitize(s string, maxLen int) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = controlChars.ReplaceAllString(s, "")
	for _, p := range injectionPatterns {
		s = p.ReplaceAllString(s, "[removed]")
	}
	s = strings.ReplaceAll(s, "```", "")
	s = strings.ReplaceAll(s, "{", "")
	s = strings.ReplaceAll(s, "}", "")
	s = spaceRuns.ReplaceAllString(s, " ")
	s = newlineRuns.ReplaceAllString(s, "\n\n")
	s = strings.TrimSpace(s)
	if maxLen > 0 {
		runes := []rune(s)
		if len(runes) > maxLen {
			s = strings.TrimSpace(string(runes[:maxLen]))
		}
	}
	return s
}
