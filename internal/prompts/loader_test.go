package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetKnownKey(t *testing.T) {
	tmpl, err := Get("generate-fills")
	require.NoError(t, err)
	assert.Contains(t, tmpl, "{{.Fields}}")
	assert.Contains(t, tmpl, "{{.Profile}}")
	assert.Contains(t, tmpl, "{{.JobContext}}")
}

func TestGetUnknownKey(t *testing.T) {
	_, err := Get("no-such-prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGetPanicsOnMissingKey(t *testing.T) {
	assert.Panics(t, func() { MustGet("no-such-prompt") })
}

func TestFormat(t *testing.T) {
	got := Format("Hello {{.Name}}, fields: {{.Fields}}", map[string]string{
		"Name":   "Ada",
		"Fields": "a, b",
	})
	assert.Equal(t, "Hello Ada, fields: a, b", got)
}

func TestFormatLeavesUnknownPlaceholders(t *testing.T) {
	got := Format("{{.Known}} {{.Unknown}}", map[string]string{"Known": "x"})
	assert.Equal(t, "x {{.Unknown}}", got)
}
