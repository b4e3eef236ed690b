package types

// Confidence is the service's self-reported certainty for a proposed value.
// It is advisory only and never gates whether a fill is applied.
type Confidence string

// Confidence levels.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Fill is a proposed value for a field, with provenance metadata, prior to
// being written onto the page.
type Fill struct {
	FieldID    string     `json:"fieldId"`
	Value      string     `json:"value"`
	Confidence Confidence `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
}

// FillsResponse is the envelope the completion service is instructed to
// return: a single JSON object holding a fills array.
type FillsResponse struct {
	Fills []Fill `json:"fills"`
}

// FillOutcome records what happened to one fill during a fill pass.
type FillOutcome struct {
	FieldID string `json:"fieldId"`
	Value   string `json:"value,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// FillResult partitions one fill pass into three disjoint ordered lists.
// Every fill that entered the pass appears in exactly one of them:
// Filled (value applied), Skipped (field unresolvable on the page), or
// Errors (resolvable but the write failed or produced a validation error).
type FillResult struct {
	Filled  []FillOutcome `json:"filled"`
	Skipped []FillOutcome `json:"skipped"`
	Errors  []FillOutcome `json:"errors"`
}

// Total returns the number of fills accounted for across all three lists.
func (r *FillResult) Total() int {
	return len(r.Filled) + len(r.Skipped) + len(r.Errors)
}
