package fill

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/form-autofill/internal/dom"
)

// ProbeResult reports a just-filled control's validation state.
type ProbeResult struct {
	HasError bool
	Message  string
}

// errorClasses are the CSS class names commonly toggled onto an invalid
// control or its wrapper.
var errorClasses = []string{"error", "invalid", "field-error", "has-error", "is-invalid"}

// errorMessageSelector finds a sibling error-message element inside the
// control's wrapper.
const errorMessageSelector = ".error-message, .field-error-message, .error-text, .help-block, [role=alert]"

var emailShape = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Probe inspects a control for a post-write error state. Checks run in
// order: explicit invalid-state marker, then native constraint emulation,
// then known error class. The first positive check wins.
func Probe(doc *goquery.Document, control *goquery.Selection) ProbeResult {
	if r := probeAriaInvalid(doc, control); r.HasError {
		return r
	}
	if r := probeConstraints(control); r.HasError {
		return r
	}
	return probeErrorClass(control)
}

// probeAriaInvalid checks the explicit invalid-state marker and pulls the
// associated described-by text when present.
func probeAriaInvalid(doc *goquery.Document, control *goquery.Selection) ProbeResult {
	if control.AttrOr("aria-invalid", "") != "true" {
		return ProbeResult{}
	}
	if describedBy := strings.TrimSpace(control.AttrOr("aria-describedby", "")); describedBy != "" {
		for _, id := range strings.Fields(describedBy) {
			text := strings.Join(strings.Fields(doc.Find(`[id="`+dom.EscapeAttr(id)+`"]`).Text()), " ")
			if text != "" {
				return ProbeResult{HasError: true, Message: text}
			}
		}
	}
	return ProbeResult{HasError: true, Message: "field is marked invalid"}
}

// probeConstraints emulates native constraint validation, distinguishing the
// required/format/pattern/length/range sub-reasons into a human message.
func probeConstraints(control *goquery.Selection) ProbeResult {
	value := dom.Value(control)
	kind, _ := dom.KindOf(control)
	_, required := control.Attr("required")

	if kind == "checkbox" || kind == "radio" {
		if _, checked := control.Attr("checked"); required && !checked {
			return ProbeResult{HasError: true, Message: "this field is required"}
		}
		return ProbeResult{}
	}
	if required && strings.TrimSpace(value) == "" {
		return ProbeResult{HasError: true, Message: "this field is required"}
	}
	if value == "" {
		return ProbeResult{}
	}

	if kind == "email" && !emailShape.MatchString(value) {
		return ProbeResult{HasError: true, Message: "value is not a valid email address"}
	}
	if kind == "url" && !strings.Contains(value, "://") {
		return ProbeResult{HasError: true, Message: "value is not a valid URL"}
	}

	if pattern := control.AttrOr("pattern", ""); pattern != "" {
		if re, err := regexp.Compile("^(?:" + pattern + ")$"); err == nil && !re.MatchString(value) {
			return ProbeResult{HasError: true, Message: "value does not match the required format"}
		}
	}

	if ml := control.AttrOr("maxlength", ""); ml != "" {
		if limit, err := strconv.Atoi(ml); err == nil && limit > 0 && len([]rune(value)) > limit {
			return ProbeResult{HasError: true, Message: fmt.Sprintf("value exceeds the maximum length of %d", limit)}
		}
	}

	if kind == "number" {
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			if minAttr := control.AttrOr("min", ""); minAttr != "" {
				if lo, err := strconv.ParseFloat(minAttr, 64); err == nil && n < lo {
					return ProbeResult{HasError: true, Message: fmt.Sprintf("value must be at least %s", minAttr)}
				}
			}
			if maxAttr := control.AttrOr("max", ""); maxAttr != "" {
				if hi, err := strconv.ParseFloat(maxAttr, 64); err == nil && n > hi {
					return ProbeResult{HasError: true, Message: fmt.Sprintf("value must be at most %s", maxAttr)}
				}
			}
		}
	}

	return ProbeResult{}
}

// probeErrorClass checks for a known error class on the control or its
// immediate wrapper, pairing it with a sibling error-message element when one
// exists.
func probeErrorClass(control *goquery.Selection) ProbeResult {
	carrier := ""
	if hasErrorClass(control) {
		carrier = "control"
	} else if parent := control.Parent(); hasErrorClass(parent) {
		carrier = "wrapper"
	}
	if carrier == "" {
		return ProbeResult{}
	}

	message := strings.Join(strings.Fields(control.Parent().Find(errorMessageSelector).First().Text()), " ")
	if message == "" {
		message = "field has a validation error"
	}
	return ProbeResult{HasError: true, Message: message}
}

func hasErrorClass(sel *goquery.Selection) bool {
	if sel.Length() == 0 {
		return false
	}
	for _, class := range errorClasses {
		if sel.HasClass(class) {
			return true
		}
	}
	return false
}
