package prompt

import (
	"fmt"
	"strings"

	"github.com/jonathan/form-autofill/internal/prompts"
	"github.com/jonathan/form-autofill/internal/types"
)

// Build renders the instruction document for one fill-generation call. It is
// a pure function of its inputs: no network, no clock, no hidden state, so it
// can be verified by input/output snapshot alone.
//
// Field ids are quoted verbatim so the service can echo them back
// unambiguously; ids never pass through the sanitizer.
func Build(fields []types.FormField, profile *types.UserProfile, jobContext string) string {
	template := prompts.MustGet("generate-fills")
	return prompts.Format(template, map[string]string{
		"Fields":     formatFields(fields),
		"Profile":    formatProfile(profile),
		"JobContext": orNone(Sanitize(jobContext, MaxJobContext)),
	})
}

func formatFields(fields []types.FormField) string {
	var b strings.Builder
	for _, f := range fields {
		fmt.Fprintf(&b, "- id: %q | kind: %s | label: %s", f.ID, f.Kind, Sanitize(f.Label, MaxShortField))
		if f.Required {
			b.WriteString(" | required")
		}
		if f.Placeholder != "" {
			fmt.Fprintf(&b, " | placeholder: %s", Sanitize(f.Placeholder, MaxShortField))
		}
		if f.MaxLength > 0 {
			fmt.Fprintf(&b, " | maxLength: %d", f.MaxLength)
		}
		if len(f.Options) > 0 {
			opts := make([]string, 0, len(f.Options))
			for _, o := range f.Options {
				label := Sanitize(o.Label, MaxShortField)
				if o.Value != "" && o.Value != o.Label {
					opts = append(opts, fmt.Sprintf("%s (value: %s)", label, Sanitize(o.Value, MaxShortField)))
				} else {
					opts = append(opts, label)
				}
			}
			fmt.Fprintf(&b, " | options: %s", strings.Join(opts, "; "))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatProfile(p *types.UserProfile) string {
	if p == nil {
		return "none"
	}
	lines := []struct {
		name  string
		value string
		max   int
	}{
		{"Full name", p.FullName, MaxShortField},
		{"Email", p.Email, MaxShortField},
		{"Phone", p.Phone, MaxShortField},
		{"Location", p.Location, MaxShortField},
		{"LinkedIn", p.LinkedIn, MaxShortField},
		{"Website", p.Website, MaxShortField},
		{"Work authorization", p.WorkAuthorization, MaxShortField},
		{"Requires sponsorship", p.RequiresSponsorship, MaxShortField},
		{"Willing to relocate", p.WillingToRelocate, MaxShortField},
		{"Desired salary", p.DesiredSalary, MaxShortField},
		{"Years of experience", p.YearsExperience, MaxShortField},
		{"Gender", p.Gender, MaxShortField},
		{"Race/ethnicity", p.RaceEthnicity, MaxShortField},
		{"Veteran status", p.VeteranStatus, MaxShortField},
		{"Disability status", p.DisabilityStatus, MaxShortField},
		{"Resume", p.ResumeText, MaxResumeText},
	}
	var b strings.Builder
	for _, l := range lines {
		v := Sanitize(l.value, l.max)
		if v == "" {
			continue
		}
		fmt.Fprintf(&b, "- %s: %s\n", l.name, v)
	}
	if b.Len() == 0 {
		return "none"
	}
	return strings.TrimRight(b.String(), "\n")
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}
	return s
}
