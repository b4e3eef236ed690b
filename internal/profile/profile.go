// Package profile loads and validates the applicant profile the prompt
// builder consumes.
package profile

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/form-autofill/internal/schemas"
	"github.com/jonathan/form-autofill/internal/types"
)

var validate = validator.New()

// Load reads a profile from a JSON file, checks it against the embedded
// schema, validates field formats, and normalizes it.
func Load(path string) (*types.UserProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a profile from raw JSON.
func Parse(data []byte) (*types.UserProfile, error) {
	if err := schemas.ValidateUserProfile(data); err != nil {
		return nil, fmt.Errorf("profile file is invalid: %w", err)
	}

	var p types.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile JSON: %w", err)
	}

	Normalize(&p)
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks field formats (email, URLs, lengths).
func Validate(p *types.UserProfile) error {
	err := validate.Struct(p)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		first := verrs[0]
		return fmt.Errorf("profile field %s failed %s validation", strings.ToLower(first.Field()), first.Tag())
	}
	return fmt.Errorf("profile validation failed: %w", err)
}

// Normalize trims whitespace on every string field. After normalization,
// absence is always an empty string.
func Normalize(p *types.UserProfile) {
	v := reflect.ValueOf(p).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		if f.Kind() == reflect.String {
			f.SetString(strings.TrimSpace(f.String()))
		}
	}
}
