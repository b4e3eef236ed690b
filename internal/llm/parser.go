package llm

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"

	"github.com/jonathan/form-autofill/internal/types"
)

// CleanJSONBlock removes a wrapping markdown code fence from model output.
// Models often fence JSON in ``` blocks even when instructed not to, with or
// without a language tag on the opening fence.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a short language identifier on the first line.
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// ParseFillsResponse extracts and validates the JSON payload embedded in the
// service's free-text reply. The reply is accepted as long as it is
// structurally an object with a fills array; individually malformed entries
// are logged and carried through with whatever members they have, since the
// fill engine isolates unusable entries per field.
func ParseFillsResponse(raw string) (*types.FillsResponse, error) {
	cleaned := CleanJSONBlock(raw)
	if cleaned == "" {
		return nil, &ParseError{Message: "empty response body"}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &top); err != nil {
		return nil, &ParseError{Message: "response is not a JSON object", Cause: err}
	}

	rawFills, ok := top["fills"]
	if !ok {
		return nil, &ParseError{Message: "missing fills array"}
	}
	var elements []json.RawMessage
	if err := json.Unmarshal(rawFills, &elements); err != nil {
		return nil, &ParseError{Message: "fills is not an array", Cause: err}
	}

	resp := &types.FillsResponse{Fills: make([]types.Fill, 0, len(elements))}
	for i, element := range elements {
		var entry struct {
			FieldID    *string         `json:"fieldId"`
			Value      json.RawMessage `json:"value"`
			Confidence *string         `json:"confidence"`
			Reasoning  *string         `json:"reasoning"`
		}
		if err := json.Unmarshal(element, &entry); err != nil {
			log.Printf("[PARSER] fills[%d] is not an object, skipping: %v", i, err)
			continue
		}

		fill := types.Fill{}
		if entry.FieldID != nil {
			fill.FieldID = *entry.FieldID
		} else {
			log.Printf("[PARSER] fills[%d] missing fieldId", i)
		}
		if entry.Value != nil {
			fill.Value = coerceValue(entry.Value)
		} else {
			log.Printf("[PARSER] fills[%d] missing value", i)
		}
		if entry.Confidence != nil {
			fill.Confidence = types.Confidence(strings.ToLower(*entry.Confidence))
		} else {
			log.Printf("[PARSER] fills[%d] missing confidence", i)
		}
		if entry.Reasoning != nil {
			fill.Reasoning = *entry.Reasoning
		} else {
			log.Printf("[PARSER] fills[%d] missing reasoning", i)
		}
		resp.Fills = append(resp.Fills, fill)
	}

	return resp, nil
}

// coerceValue renders a JSON value of any scalar type as the string the fill
// engine consumes. The service is asked for strings but does not always
// comply; booleans and numbers are common for checkbox and number fields.
func coerceValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return strconv.FormatFloat(n, 'f', -1, 64)
	}
	return strings.TrimSpace(string(raw))
}
