// Package types defines the shared data model for form analysis and filling.
package types

// FieldKind is the semantic type of a form control. It drives the write
// strategy the fill engine uses for that control.
type FieldKind string

// Supported field kinds. Controls of any other kind are omitted during
// extraction.
const (
	KindText     FieldKind = "text"
	KindEmail    FieldKind = "email"
	KindTel      FieldKind = "tel"
	KindNumber   FieldKind = "number"
	KindDate     FieldKind = "date"
	KindURL      FieldKind = "url"
	KindTextarea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
	KindRadio    FieldKind = "radio"
	KindCheckbox FieldKind = "checkbox"
)

// Valid reports whether k is one of the supported field kinds.
func (k FieldKind) Valid() bool {
	switch k {
	case KindText, KindEmail, KindTel, KindNumber, KindDate, KindURL,
		KindTextarea, KindSelect, KindRadio, KindCheckbox:
		return true
	}
	return false
}

// SelectOption pairs a submit value with its human-readable label.
type SelectOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// FormField describes one logical input unit discovered on a page: a single
// control, or a group of same-named radio controls. For a radio group the ID
// is the shared group name, not a per-control identifier.
type FormField struct {
	ID          string         `json:"id"`
	Kind        FieldKind      `json:"kind"`
	Label       string         `json:"label"`
	Required    bool           `json:"required"`
	Placeholder string         `json:"placeholder,omitempty"`
	MaxLength   int            `json:"maxLength,omitempty"`
	Options     []SelectOption `json:"options,omitempty"`
}

// JobPosting carries the job-context text surrounding the form.
type JobPosting struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Analysis is the result of one extraction pass over a page. Field sets are
// produced fresh on every pass and never cached; the page may mutate between
// analyze and fill.
type Analysis struct {
	Fields     []FormField `json:"fields"`
	JobPosting JobPosting  `json:"jobPosting"`
	URL        string      `json:"url,omitempty"`
}
