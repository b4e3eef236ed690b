package dom

import "github.com/PuerkitoBio/goquery"

// ChangeNotifier fires the event sequence a page's own validation listeners
// expect after a control's value has been written. The fill engine depends on
// this interface rather than on a concrete dispatch mechanism so it can be
// exercised against a synthetic control tree.
type ChangeNotifier interface {
	NotifyFieldChanged(control *goquery.Selection)
}

// AttrNotifier is the in-memory dispatcher. It records the input-then-change
// sequence as an attribute on the control itself; re-notifying the same
// control is idempotent.
type AttrNotifier struct{}

// NotifyFieldChanged implements ChangeNotifier.
func (AttrNotifier) NotifyFieldChanged(control *goquery.Selection) {
	control.SetAttr(EventsAttr, "input,change")
}

// NotifierFunc adapts a function to the ChangeNotifier interface.
type NotifierFunc func(control *goquery.Selection)

// NotifyFieldChanged implements ChangeNotifier.
func (f NotifierFunc) NotifyFieldChanged(control *goquery.Selection) {
	f(control)
}
