package fill

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/form-autofill/internal/dom"
	"github.com/jonathan/form-autofill/internal/types"
)

// DefaultSettleDelay is the pause after writing a value, allowing the page's
// own validation logic to run before the control is probed.
const DefaultSettleDelay = 100 * time.Millisecond

// Sleeper abstracts the settle delay so tests run instantly.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type noSleep struct{}

func (noSleep) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

// Engine applies a batch of fills onto one document, strictly in input order.
// A batch runs to completion once started; per-field failures are isolated
// and never abort the batch.
type Engine struct {
	doc      *goquery.Document
	notifier dom.ChangeNotifier
	sleeper  Sleeper
	settle   time.Duration
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithNotifier injects the change-event dispatcher.
func WithNotifier(n dom.ChangeNotifier) EngineOption { return func(e *Engine) { e.notifier = n } }

// WithSleeper injects the settle-delay sleeper.
func WithSleeper(s Sleeper) EngineOption { return func(e *Engine) { e.sleeper = s } }

// WithSettleDelay overrides the settle delay.
func WithSettleDelay(d time.Duration) EngineOption { return func(e *Engine) { e.settle = d } }

// NewEngine creates an engine over one document. By default it uses the
// in-memory attribute notifier and no settle delay (there is no live page to
// wait for); a live dispatcher should be paired with a real sleeper.
func NewEngine(doc *goquery.Document, opts ...EngineOption) *Engine {
	e := &Engine{
		doc:      doc,
		notifier: dom.AttrNotifier{},
		sleeper:  noSleep{},
		settle:   0,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FillAll applies every fill and partitions the outcomes. Each input fill
// lands in exactly one of the result's three lists.
func (e *Engine) FillAll(ctx context.Context, fills []types.Fill) *types.FillResult {
	result := &types.FillResult{
		Filled:  []types.FillOutcome{},
		Skipped: []types.FillOutcome{},
		Errors:  []types.FillOutcome{},
	}

	for _, f := range fills {
		control := e.resolve(f.FieldID)
		if control.Length() == 0 {
			result.Skipped = append(result.Skipped, types.FillOutcome{
				FieldID: f.FieldID,
				Reason:  "element not found",
			})
			continue
		}

		kind, ok := dom.KindOf(control.First())
		if !ok {
			result.Skipped = append(result.Skipped, types.FillOutcome{
				FieldID: f.FieldID,
				Reason:  "unsupported control kind",
			})
			continue
		}

		target, finalValue, skipReason := e.apply(control, kind, f.Value)
		if target == nil && skipReason != "" {
			log.Printf("[FILL] %s: %s", f.FieldID, skipReason)
			result.Skipped = append(result.Skipped, types.FillOutcome{
				FieldID: f.FieldID,
				Reason:  skipReason,
			})
			continue
		}

		if target != nil {
			e.notifier.NotifyFieldChanged(target)
			if e.settle > 0 {
				if err := e.sleeper.Sleep(ctx, e.settle); err != nil {
					log.Printf("[FILL] settle interrupted: %v", err)
				}
			}
			if probe := Probe(e.doc, target); probe.HasError {
				result.Errors = append(result.Errors, types.FillOutcome{
					FieldID: f.FieldID,
					Value:   finalValue,
					Reason:  probe.Message,
				})
				continue
			}
		}

		result.Filled = append(result.Filled, types.FillOutcome{
			FieldID: f.FieldID,
			Value:   finalValue,
		})
	}

	return result
}

// resolve locates a control by field identifier: the marker attribute stamped
// during extraction, then the declared id, then the declared name. For radio
// groups the name resolves to every member.
func (e *Engine) resolve(fieldID string) *goquery.Selection {
	escaped := dom.EscapeAttr(fieldID)
	if sel := e.doc.Find(`[` + dom.MarkerAttr + `="` + escaped + `"]`); sel.Length() > 0 {
		return sel
	}
	if sel := e.doc.Find(`[id="` + escaped + `"]`); sel.Length() > 0 {
		return sel
	}
	return e.doc.Find(`[name="` + escaped + `"]`)
}

// apply writes one coerced value onto a control. It returns the element the
// write landed on (nil when no write occurred), the value actually stored
// (which may differ from the proposal after coercion or option matching), and
// a skip reason when the value could not be written at all.
//
// The returned element is the notify and probe target. For a radio group that
// is the member that was activated, not the group's first member.
//
// An unmatched select or radio proposal performs no write but still reports
// the proposal as its final value; callers count it as filled.
func (e *Engine) apply(control *goquery.Selection, kind types.FieldKind, value string) (target *goquery.Selection, finalValue string, skipReason string) {
	first := control.First()

	switch kind {
	case types.KindText, types.KindEmail, types.KindTel:
		dom.SetValue(first, value)
		return first, value, ""

	case types.KindTextarea:
		// Direct assignment; embedded newlines survive.
		dom.SetValue(first, value)
		return first, value, ""

	case types.KindNumber:
		coerced, ok := coerceNumber(value, first.AttrOr("min", ""), first.AttrOr("max", ""))
		if !ok {
			return nil, "", "value is not a number"
		}
		dom.SetValue(first, coerced)
		return first, coerced, ""

	case types.KindDate:
		coerced := coerceDate(value)
		dom.SetValue(first, coerced)
		return first, coerced, ""

	case types.KindURL:
		coerced := coerceURL(value)
		dom.SetValue(first, coerced)
		return first, coerced, ""

	case types.KindSelect:
		options, elements := selectCandidates(first)
		idx := MatchOption(options, value)
		if idx < 0 {
			// No match leaves the control unchanged; the proposal itself is
			// still recorded as filled.
			return nil, value, ""
		}
		dom.SelectOption(first, elements[idx])
		return first, options[idx].Value, ""

	case types.KindRadio:
		members := e.radioGroup(control)
		options, elements := e.radioCandidates(members)
		idx := MatchOption(options, value)
		if idx < 0 {
			return nil, value, ""
		}
		members.Each(func(_ int, m *goquery.Selection) { dom.SetChecked(m, false) })
		dom.SetChecked(elements[idx], true)
		return elements[idx], options[idx].Value, ""

	case types.KindCheckbox:
		dom.SetChecked(first, coerceBool(value))
		return first, value, ""
	}

	return nil, "", "unsupported control kind"
}

// radioGroup widens a resolved radio selection to the whole named group.
func (e *Engine) radioGroup(control *goquery.Selection) *goquery.Selection {
	name := strings.TrimSpace(control.First().AttrOr("name", ""))
	if name == "" {
		return control
	}
	group := e.doc.Find(`input[type="radio"][name="` + dom.EscapeAttr(name) + `"]`)
	if group.Length() == 0 {
		return control
	}
	return group
}

// selectCandidates lists a select element's options alongside the matching
// option elements, index for index.
func selectCandidates(sel *goquery.Selection) ([]types.SelectOption, []*goquery.Selection) {
	var options []types.SelectOption
	var elements []*goquery.Selection
	sel.Find("option").Each(func(_ int, o *goquery.Selection) {
		label := strings.TrimSpace(o.Text())
		options = append(options, types.SelectOption{
			Value: o.AttrOr("value", label),
			Label: label,
		})
		elements = append(elements, o)
	})
	return options, elements
}

// radioCandidates lists a radio group's members as matchable options, using
// each member's associated label text and value attribute.
func (e *Engine) radioCandidates(members *goquery.Selection) ([]types.SelectOption, []*goquery.Selection) {
	var options []types.SelectOption
	var elements []*goquery.Selection
	members.Each(func(_ int, m *goquery.Selection) {
		label := ""
		if id := strings.TrimSpace(m.AttrOr("id", "")); id != "" {
			label = strings.Join(strings.Fields(e.doc.Find(`label[for="`+dom.EscapeAttr(id)+`"]`).Text()), " ")
		}
		if label == "" {
			label = strings.Join(strings.Fields(m.Closest("label").Text()), " ")
		}
		if label == "" {
			label = strings.TrimSpace(m.AttrOr("aria-label", ""))
		}
		options = append(options, types.SelectOption{
			Value: m.AttrOr("value", ""),
			Label: label,
		})
		elements = append(elements, m)
	})
	return options, elements
}
