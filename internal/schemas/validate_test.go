package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFillsResponse(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid full entry", `{"fills": [{"fieldId": "a", "value": "x", "confidence": "high", "reasoning": "r"}]}`, false},
		{"empty fills", `{"fills": []}`, false},
		{"entry with missing members", `{"fills": [{"fieldId": "a"}]}`, false},
		{"boolean value", `{"fills": [{"fieldId": "a", "value": true}]}`, false},
		{"numeric value", `{"fills": [{"fieldId": "a", "value": 42}]}`, false},
		{"missing fills", `{"values": []}`, true},
		{"fills not an array", `{"fills": {}}`, true},
		{"non-object entry", `{"fills": ["x"]}`, true},
		{"top level array", `[]`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFillsResponse([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateUserProfile(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr bool
	}{
		{"valid", `{"full_name": "Ada", "email": "ada@example.com"}`, false},
		{"empty object", `{}`, false},
		{"unknown member", `{"full_name": "Ada", "favorite_color": "blue"}`, true},
		{"non-string member", `{"full_name": 42}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUserProfile([]byte(tt.doc))
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidateUserProfile([]byte(`{"full_name": 42, "email": 7}`))
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
	assert.Contains(t, ve.Error(), "validation failed")
}
