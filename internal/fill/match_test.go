package fill

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/form-autofill/internal/types"
)

func TestMatchOption(t *testing.T) {
	options := []types.SelectOption{
		{Value: "us-citizen", Label: "U.S. Citizen"},
		{Value: "permanent-resident", Label: "Permanent Resident"},
		{Value: "other", Label: "Other"},
	}

	tests := []struct {
		name  string
		value string
		want  int
	}{
		{"exact label", "U.S. Citizen", 0},
		{"exact label case-insensitive", "u.s. citizen", 0},
		{"exact value", "us-citizen", 0},
		{"proposal contains label", "I am a Permanent Resident of the US", 1},
		{"label contains proposal", "Resident", 1},
		{"value substring", "other", 2},
		{"no match", "martian", -1},
		{"empty proposal", "", -1},
		{"whitespace trimmed", "  other  ", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchOption(options, tt.value))
		})
	}
}

func TestMatchOptionExactBeatsSubstring(t *testing.T) {
	options := []types.SelectOption{
		{Value: "male-ish", Label: "Male-ish"},
		{Value: "male", Label: "Male"},
	}
	// "male" is a substring of option 0 but an exact match of option 1.
	assert.Equal(t, 1, MatchOption(options, "male"))
}

func TestMatchOptionGenderScenario(t *testing.T) {
	options := []types.SelectOption{
		{Value: "female", Label: "Female"},
		{Value: "male", Label: "Male"},
		{Value: "decline", Label: "Decline to self-identify"},
	}
	// Exact matching must pick "Male" and never stop at "Female", which
	// contains "male" as a substring.
	assert.Equal(t, 1, MatchOption(options, "male"))
	assert.Equal(t, 1, MatchOption(options, "Male"))
	assert.Equal(t, 0, MatchOption(options, "female"))
}

func TestMatchOptionEmptyOptions(t *testing.T) {
	assert.Equal(t, -1, MatchOption(nil, "anything"))
}
