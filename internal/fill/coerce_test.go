package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"iso passthrough", "2020-01-15", "2020-01-15"},
		{"slash MDY", "01/15/2020", "2020-01-15"},
		{"slash MDY unpadded", "1/5/2020", "2020-01-05"},
		{"dash DMY", "15-01-2020", "2020-01-15"},
		{"slash YMD", "2020/1/15", "2020-01-15"},
		{"unknown shape unchanged", "January 15, 2020", "January 15, 2020"},
		{"garbage unchanged", "soon", "soon"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceDate(tt.input))
		})
	}
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		min     string
		max     string
		want    string
		ok      bool
	}{
		{"plain integer", "7", "", "", "7", true},
		{"decimal", "3.50", "", "", "3.5", true},
		{"clamped to min", "2", "5", "", "5", true},
		{"clamped to max", "120", "", "99", "99", true},
		{"inside bounds", "10", "5", "99", "10", true},
		{"unparseable", "several", "", "", "", false},
		{"empty", "", "", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := coerceNumber(tt.input, tt.min, tt.max)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCoerceURL(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"scheme kept", "https://example.com", "https://example.com"},
		{"http kept", "http://example.com", "http://example.com"},
		{"bare host prefixed", "linkedin.com/in/ada", "https://linkedin.com/in/ada"},
		{"no dot unchanged", "not a url", "not a url"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, coerceURL(tt.input))
		})
	}
}

func TestCoerceBool(t *testing.T) {
	assert.True(t, coerceBool("true"))
	assert.True(t, coerceBool("yes"))
	assert.False(t, coerceBool("TRUE"))
	assert.False(t, coerceBool("Yes"))
	assert.False(t, coerceBool("no"))
	assert.False(t, coerceBool("1"))
	assert.False(t, coerceBool(""))
}
