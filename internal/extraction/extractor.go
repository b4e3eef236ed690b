// Package extraction walks a document and produces an ordered list of
// FormField descriptors with stable identifiers for every enabled, visible,
// fillable control.
package extraction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/types"
)

// syntheticPrefix prefixes identifiers synthesized for controls that declare
// neither an id nor a name. The ordinal is the 0-based position among all
// extracted fields so far, not per kind.
const syntheticPrefix = "field"

// Extract returns the form fields of an entire document.
func Extract(doc *goquery.Document) []types.FormField {
	return ExtractFrom(doc.Selection)
}

// ExtractFrom returns the form fields found under a container node, in
// document order. Radio controls sharing a name contribute exactly one field,
// positioned where the first member appears, with the group's distinct option
// labels accumulated in first-seen order. A control that cannot be classified
// is omitted; extraction never fails for an individual control.
func ExtractFrom(container *goquery.Selection) []types.FormField {
	fields := make([]types.FormField, 0, 16)
	seen := make(map[string]bool)
	radioIndex := make(map[string]int) // group name -> index into fields

	container.Find("input, select, textarea").Each(func(_ int, s *goquery.Selection) {
		kind, ok := dom.KindOf(s)
		if !ok {
			return
		}
		if dom.IsDisabled(s) || dom.IsHidden(s) {
			return
		}

		if kind == types.KindRadio {
			name := strings.TrimSpace(s.AttrOr("name", ""))
			if name == "" {
				// A nameless radio cannot be grouped or resolved later.
				return
			}
			opt := types.SelectOption{
				Value: s.AttrOr("value", ""),
				Label: radioMemberLabel(container, s),
			}
			if idx, ok := radioIndex[name]; ok {
				appendDistinctOption(&fields[idx], opt)
				if isRequired(s) {
					fields[idx].Required = true
				}
				return
			}
			if seen[name] {
				// The group name collides with a previously extracted field;
				// the group is unreachable under that identifier.
				return
			}
			field := types.FormField{
				ID:       name,
				Kind:     types.KindRadio,
				Label:    groupLabel(s, name),
				Required: isRequired(s),
			}
			appendDistinctOption(&field, opt)
			radioIndex[name] = len(fields)
			seen[name] = true
			fields = append(fields, field)
			return
		}

		id := identifierFor(s, len(fields), seen)
		field := types.FormField{
			ID:          id,
			Kind:        kind,
			Label:       labelFor(container, s),
			Required:    isRequired(s),
			Placeholder: s.AttrOr("placeholder", ""),
		}
		if ml := s.AttrOr("maxlength", ""); ml != "" {
			if n, err := strconv.Atoi(ml); err == nil && n > 0 {
				field.MaxLength = n
			}
		}
		if kind == types.KindSelect {
			field.Options = selectOptions(s)
		}
		seen[id] = true
		fields = append(fields, field)
	})

	return fields
}

// identifierFor picks the stable identifier for a non-grouped control:
// declared id, else declared name, else a synthesized ordinal identifier. Any
// identifier that would collide with one already extracted is replaced by a
// synthesized one so ids stay unique within the pass. Synthesized identifiers
// are stamped onto the control as a marker attribute, since nothing else on
// the control carries them.
func identifierFor(s *goquery.Selection, ordinal int, seen map[string]bool) string {
	id := strings.TrimSpace(s.AttrOr("id", ""))
	if id == "" {
		id = strings.TrimSpace(s.AttrOr("name", ""))
	}
	if id != "" && !seen[id] {
		return id
	}
	synth := fmt.Sprintf("%s-%d", syntheticPrefix, ordinal)
	s.SetAttr(dom.MarkerAttr, synth)
	return synth
}

func isRequired(s *goquery.Selection) bool {
	if _, ok := s.Attr("required"); ok {
		return true
	}
	return s.AttrOr("aria-required", "") == "true"
}

// selectOptions collects a select element's options, skipping placeholder
// entries with neither value nor text.
func selectOptions(s *goquery.Selection) []types.SelectOption {
	var opts []types.SelectOption
	s.Find("option").Each(func(_ int, o *goquery.Selection) {
		label := strings.TrimSpace(o.Text())
		value := o.AttrOr("value", label)
		if value == "" && label == "" {
			return
		}
		opts = append(opts, types.SelectOption{Value: value, Label: label})
	})
	return opts
}

func appendDistinctOption(field *types.FormField, opt types.SelectOption) {
	if opt.Label == "" && opt.Value == "" {
		return
	}
	for _, existing := range field.Options {
		if existing.Label == opt.Label && existing.Value == opt.Value {
			return
		}
	}
	field.Options = append(field.Options, opt)
}
