package dom

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/form-autofill/internal/types"
)

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name     string
		html     string
		selector string
		want     types.FieldKind
		ok       bool
	}{
		{"untyped input is text", `<input name="a">`, "input", types.KindText, true},
		{"explicit text", `<input type="text">`, "input", types.KindText, true},
		{"case-insensitive type", `<input type="EMAIL">`, "input", types.KindEmail, true},
		{"tel", `<input type="tel">`, "input", types.KindTel, true},
		{"number", `<input type="number">`, "input", types.KindNumber, true},
		{"date", `<input type="date">`, "input", types.KindDate, true},
		{"url", `<input type="url">`, "input", types.KindURL, true},
		{"radio", `<input type="radio">`, "input", types.KindRadio, true},
		{"checkbox", `<input type="checkbox">`, "input", types.KindCheckbox, true},
		{"select", `<select></select>`, "select", types.KindSelect, true},
		{"textarea", `<textarea></textarea>`, "textarea", types.KindTextarea, true},
		{"submit is unsupported", `<input type="submit">`, "input", "", false},
		{"file is unsupported", `<input type="file">`, "input", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, tt.html)
			kind, ok := KindOf(doc.Find(tt.selector))
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestIsDisabled(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"plain control", `<input id="x">`, false},
		{"disabled attribute", `<input id="x" disabled>`, true},
		{"disabled fieldset ancestor", `<fieldset disabled><input id="x"></fieldset>`, true},
		{"enabled fieldset ancestor", `<fieldset><input id="x"></fieldset>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, tt.html)
			assert.Equal(t, tt.want, IsDisabled(doc.Find("#x")))
		})
	}
}

func TestIsHidden(t *testing.T) {
	tests := []struct {
		name string
		html string
		want bool
	}{
		{"visible control", `<input id="x">`, false},
		{"hidden type", `<input id="x" type="hidden">`, true},
		{"hidden attribute on ancestor", `<div hidden><input id="x"></div>`, true},
		{"aria-hidden", `<input id="x" aria-hidden="true">`, true},
		{"display none ancestor", `<div style="display: none"><input id="x"></div>`, true},
		{"visibility hidden on control", `<input id="x" style="visibility:hidden">`, true},
		{"unrelated inline style", `<div style="color: red"><input id="x"></div>`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := mustDoc(t, tt.html)
			assert.Equal(t, tt.want, IsHidden(doc.Find("#x")))
		})
	}
}

func TestValueAndSetValue(t *testing.T) {
	t.Run("input round trip", func(t *testing.T) {
		doc := mustDoc(t, `<input id="x">`)
		control := doc.Find("#x")
		SetValue(control, "hello")
		assert.Equal(t, "hello", Value(control))
	})

	t.Run("textarea uses text content", func(t *testing.T) {
		doc := mustDoc(t, `<textarea id="x">old</textarea>`)
		control := doc.Find("#x")
		SetValue(control, "line one\nline two")
		assert.Equal(t, "line one\nline two", Value(control))
	})

	t.Run("select reads selected option", func(t *testing.T) {
		doc := mustDoc(t, `<select id="x"><option value="a">A</option><option value="b" selected>B</option></select>`)
		assert.Equal(t, "b", Value(doc.Find("#x")))
	})

	t.Run("select with no selection is empty", func(t *testing.T) {
		doc := mustDoc(t, `<select id="x"><option value="a">A</option></select>`)
		assert.Equal(t, "", Value(doc.Find("#x")))
	})
}

func TestSelectOption(t *testing.T) {
	doc := mustDoc(t, `<select id="x"><option value="a" selected>A</option><option value="b">B</option></select>`)
	sel := doc.Find("#x")
	SelectOption(sel, sel.Find(`option[value="b"]`))

	assert.Equal(t, "b", Value(sel))
	assert.Equal(t, 1, sel.Find("option[selected]").Length())
}

func TestSetChecked(t *testing.T) {
	doc := mustDoc(t, `<input id="x" type="checkbox">`)
	control := doc.Find("#x")

	SetChecked(control, true)
	_, checked := control.Attr("checked")
	assert.True(t, checked)

	SetChecked(control, false)
	_, checked = control.Attr("checked")
	assert.False(t, checked)
}

func TestAttrNotifier(t *testing.T) {
	doc := mustDoc(t, `<input id="x">`)
	control := doc.Find("#x")

	AttrNotifier{}.NotifyFieldChanged(control)
	assert.Equal(t, "input,change", control.AttrOr(EventsAttr, ""))
}

func TestEscapeAttr(t *testing.T) {
	doc := mustDoc(t, `<input name='weird"name'>`)
	sel := doc.Find(`[name="` + EscapeAttr(`weird"name`) + `"]`)
	assert.Equal(t, 1, sel.Length())
}
