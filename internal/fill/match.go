// Package fill applies proposed values onto a document's controls, coercing
// each value to the control's semantic type and probing for post-write
// validation errors.
package fill

import (
	"strings"

	"github.com/jonathan/form-autofill/internal/types"
)

// MatchOption resolves a proposed value against option labels and values:
// first an exact case-insensitive match, then bidirectional substring
// containment. First match wins. Returns -1 when nothing matches.
func MatchOption(options []types.SelectOption, value string) int {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return -1
	}

	for i, o := range options {
		if strings.ToLower(strings.TrimSpace(o.Label)) == v || strings.ToLower(strings.TrimSpace(o.Value)) == v {
			return i
		}
	}

	for i, o := range options {
		label := strings.ToLower(strings.TrimSpace(o.Label))
		val := strings.ToLower(strings.TrimSpace(o.Value))
		if label != "" && (strings.Contains(label, v) || strings.Contains(v, label)) {
			return i
		}
		if val != "" && (strings.Contains(val, v) || strings.Contains(v, val)) {
			return i
		}
	}

	return -1
}
