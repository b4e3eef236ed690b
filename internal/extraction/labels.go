package extraction

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/form-autofill/internal/dom"
)

// unlabeledFallback is used when every label resolution strategy fails.
const unlabeledFallback = "Unlabeled field"

// labelFor resolves the human-readable label of a control. First match wins:
// an explicit label[for] association, an ancestor label element, an
// aria-label attribute, the placeholder text, the control's name with
// separators replaced by spaces, and finally a literal fallback.
func labelFor(container *goquery.Selection, s *goquery.Selection) string {
	if id := strings.TrimSpace(s.AttrOr("id", "")); id != "" {
		sel := `label[for="` + dom.EscapeAttr(id) + `"]`
		if text := cleanLabelText(container.Find(sel)); text != "" {
			return text
		}
	}
	if text := cleanLabelText(s.Closest("label")); text != "" {
		return text
	}
	if aria := strings.TrimSpace(s.AttrOr("aria-label", "")); aria != "" {
		return aria
	}
	if ph := strings.TrimSpace(s.AttrOr("placeholder", "")); ph != "" {
		return ph
	}
	if name := strings.TrimSpace(s.AttrOr("name", "")); name != "" {
		return nameToLabel(name)
	}
	return unlabeledFallback
}

// radioMemberLabel resolves the label of a single radio member, preferring
// its own label association and falling back to its value attribute.
func radioMemberLabel(container *goquery.Selection, s *goquery.Selection) string {
	if id := strings.TrimSpace(s.AttrOr("id", "")); id != "" {
		sel := `label[for="` + dom.EscapeAttr(id) + `"]`
		if text := cleanLabelText(container.Find(sel)); text != "" {
			return text
		}
	}
	if text := cleanLabelText(s.Closest("label")); text != "" {
		return text
	}
	if aria := strings.TrimSpace(s.AttrOr("aria-label", "")); aria != "" {
		return aria
	}
	return strings.TrimSpace(s.AttrOr("value", ""))
}

// groupLabel resolves the label of a radio group: the enclosing fieldset's
// legend when present, else the group name with separators spaced out.
func groupLabel(s *goquery.Selection, name string) string {
	if legend := cleanLabelText(s.Closest("fieldset").Find("legend").First()); legend != "" {
		return legend
	}
	if aria := strings.TrimSpace(s.Closest("[role=radiogroup]").AttrOr("aria-label", "")); aria != "" {
		return aria
	}
	return nameToLabel(name)
}

// cleanLabelText extracts and normalizes the text of a label-like element.
func cleanLabelText(sel *goquery.Selection) string {
	if sel == nil || sel.Length() == 0 {
		return ""
	}
	return strings.Join(strings.Fields(sel.First().Text()), " ")
}

// nameToLabel turns a machine name like "work_authorization-status" into
// "work authorization status".
func nameToLabel(name string) string {
	replacer := strings.NewReplacer("_", " ", "-", " ", ".", " ", "[", " ", "]", " ")
	return strings.Join(strings.Fields(replacer.Replace(name)), " ")
}
