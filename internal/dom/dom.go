// Package dom provides the document facade the extractor and fill engine
// share: control classification, visibility checks, attribute-level value
// writes, and the marker attribute used to relocate controls that have no
// usable identifier of their own.
package dom

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/form-autofill/internal/types"
)

// MarkerAttr is stamped onto a control whenever the extractor synthesizes an
// identifier for it. A synthesized identifier is not independently resolvable
// from the control afterward, so the marker is the only way the fill engine
// can find that control again.
const MarkerAttr = "data-autofill-id"

// EventsAttr records the dispatch sequence the change notifier fired on a
// control, so probes and tests can observe it.
const EventsAttr = "data-autofill-events"

// KindOf classifies a control into a supported field kind. The second return
// is false for controls of unsupported kinds (buttons, file pickers, hidden
// inputs and so on), which extraction silently omits.
func KindOf(s *goquery.Selection) (types.FieldKind, bool) {
	switch goquery.NodeName(s) {
	case "select":
		return types.KindSelect, true
	case "textarea":
		return types.KindTextarea, true
	case "input":
		t := strings.ToLower(strings.TrimSpace(s.AttrOr("type", "text")))
		switch t {
		case "", "text":
			return types.KindText, true
		case "email":
			return types.KindEmail, true
		case "tel":
			return types.KindTel, true
		case "number":
			return types.KindNumber, true
		case "date":
			return types.KindDate, true
		case "url":
			return types.KindURL, true
		case "radio":
			return types.KindRadio, true
		case "checkbox":
			return types.KindCheckbox, true
		}
	}
	return "", false
}

// IsDisabled reports whether a control is disabled, directly or through an
// enclosing disabled fieldset.
func IsDisabled(s *goquery.Selection) bool {
	if _, ok := s.Attr("disabled"); ok {
		return true
	}
	return s.Closest("fieldset[disabled]").Length() > 0
}

// IsHidden reports whether a control is invisible to the user: hidden-typed,
// carrying the hidden attribute (on itself or an ancestor), aria-hidden, or
// inside an inline-styled display:none / visibility:hidden subtree.
func IsHidden(s *goquery.Selection) bool {
	if strings.EqualFold(s.AttrOr("type", ""), "hidden") {
		return true
	}
	if s.Closest("[hidden]").Length() > 0 {
		return true
	}
	if s.AttrOr("aria-hidden", "") == "true" {
		return true
	}
	hidden := false
	s.Parents().AddSelection(s).EachWithBreak(func(_ int, p *goquery.Selection) bool {
		style := strings.ReplaceAll(strings.ToLower(p.AttrOr("style", "")), " ", "")
		if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
			hidden = true
			return false
		}
		return true
	})
	return hidden
}

// Value reads the current value of a control according to its kind.
func Value(s *goquery.Selection) string {
	switch goquery.NodeName(s) {
	case "textarea":
		return s.Text()
	case "select":
		selected := s.Find("option[selected]")
		if selected.Length() == 0 {
			return ""
		}
		opt := selected.First()
		return opt.AttrOr("value", strings.TrimSpace(opt.Text()))
	default:
		return s.AttrOr("value", "")
	}
}

// SetValue writes a string value onto a text-like control.
func SetValue(s *goquery.Selection, value string) {
	if goquery.NodeName(s) == "textarea" {
		s.SetText(value)
		return
	}
	s.SetAttr("value", value)
}

// SetChecked toggles the checked state of a checkbox or radio control.
func SetChecked(s *goquery.Selection, checked bool) {
	if checked {
		s.SetAttr("checked", "checked")
		return
	}
	s.RemoveAttr("checked")
}

// SelectOption marks exactly one option of a select element as selected.
func SelectOption(sel *goquery.Selection, option *goquery.Selection) {
	sel.Find("option").RemoveAttr("selected")
	option.SetAttr("selected", "selected")
}

// EscapeAttr escapes a value for use inside a double-quoted CSS attribute
// selector.
func EscapeAttr(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}
