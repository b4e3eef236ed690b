package fill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	isoDate   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	slashMDY  = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	dashDMY   = regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`)
	slashYMD  = regexp.MustCompile(`^(\d{4})/(\d{1,2})/(\d{1,2})$`)
	hasScheme = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://`)
)

// coerceDate reinterprets common literal date patterns into the canonical
// YYYY-MM-DD shape by explicit digit-group parsing. Generic date parsing is
// deliberately avoided: it silently mis-reads regional formats. A value
// matching no pattern is returned unchanged.
func coerceDate(value string) string {
	v := strings.TrimSpace(value)
	if isoDate.MatchString(v) {
		return v
	}
	if m := slashMDY.FindStringSubmatch(v); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[1]), pad2(m[2]))
	}
	if m := dashDMY.FindStringSubmatch(v); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[3], pad2(m[2]), pad2(m[1]))
	}
	if m := slashYMD.FindStringSubmatch(v); m != nil {
		return fmt.Sprintf("%s-%s-%s", m[1], pad2(m[2]), pad2(m[3]))
	}
	return value
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

// coerceNumber parses the value as a float and clamps it to the declared
// bounds when present. The ok return is false for unparseable values, which
// are never written.
func coerceNumber(value, minAttr, maxAttr string) (string, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return "", false
	}
	if minAttr != "" {
		if lo, err := strconv.ParseFloat(minAttr, 64); err == nil && n < lo {
			n = lo
		}
	}
	if maxAttr != "" {
		if hi, err := strconv.ParseFloat(maxAttr, 64); err == nil && n > hi {
			n = hi
		}
	}
	return strconv.FormatFloat(n, 'f', -1, 64), true
}

// coerceURL prefixes a default secure scheme when the value looks like a bare
// host.
func coerceURL(value string) string {
	v := strings.TrimSpace(value)
	if v == "" || hasScheme.MatchString(v) {
		return v
	}
	if strings.Contains(v, ".") {
		return "https://" + v
	}
	return v
}

// coerceBool applies the checkbox truthiness rule: the literal values "true"
// and "yes" (case-sensitive) check the box, anything else unchecks it.
func coerceBool(value string) bool {
	return value == "true" || value == "yes"
}
