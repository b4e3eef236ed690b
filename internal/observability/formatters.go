// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/form-autofill/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 8
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintFields outputs a summary of the extracted form fields.
func (p *Printer) PrintFields(fields []types.FormField) {
	if len(fields) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Extracted %d fields:\n\n", len(fields)))

	count := min(len(fields), maxItemsToShow)
	for i := 0; i < count; i++ {
		f := fields[i]
		label := f.Label
		if len(label) > 30 {
			label = label[:27] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s (%s)", label, f.Kind))
		if f.Required {
			sb.WriteString(" *")
		}
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("  id: %s\n", f.ID))
		if len(f.Options) > 0 {
			sb.WriteString(fmt.Sprintf("  %d options\n", len(f.Options)))
		}
	}

	if len(fields) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more fields", len(fields)-maxItemsToShow))
	}

	p.printBox("EXTRACTED FORM FIELDS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintJobPosting outputs the job context scraped from the page.
func (p *Printer) PrintJobPosting(posting *types.JobPosting) {
	if posting == nil || (posting.Title == "" && posting.Description == "") {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Title: %s\n", posting.Title))
	desc := posting.Description
	if len(desc) > 200 {
		desc = desc[:197] + "..."
	}
	sb.WriteString(fmt.Sprintf("Description (%d chars):\n", len(posting.Description)))
	for _, line := range strings.Split(desc, "\n") {
		sb.WriteString("  " + line + "\n")
	}

	p.printBox("JOB POSTING", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFills outputs the generated fill values with confidence levels.
func (p *Printer) PrintFills(fills []types.Fill) {
	if len(fills) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Generated %d fills:\n\n", len(fills)))

	count := min(len(fills), maxItemsToShow)
	for i := 0; i < count; i++ {
		f := fills[i]
		value := f.Value
		if len(value) > 35 {
			value = value[:32] + "..."
		}
		sb.WriteString(fmt.Sprintf("• %s = %q\n", f.FieldID, value))
		if f.Confidence != "" {
			sb.WriteString(fmt.Sprintf("  confidence: %s\n", f.Confidence))
		}
	}

	if len(fills) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more fills", len(fills)-maxItemsToShow))
	}

	p.printBox("GENERATED FILLS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFillResult outputs the final filled/skipped/errors partition.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFillResult(result *types.FillResult) {
	if result == nil {
		return
	}

	if len(result.Skipped) == 0 && len(result.Errors) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, fmt.Sprintf("✅ ALL %d FIELDS FILLED", len(result.Filled)))
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Filled: %d  Skipped: %d  Errors: %d\n",
		len(result.Filled), len(result.Skipped), len(result.Errors)))

	if len(result.Skipped) > 0 {
		sb.WriteString("\nSkipped:\n")
		for _, s := range result.Skipped {
			reason := s.Reason
			if len(reason) > 35 {
				reason = reason[:32] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", s.FieldID, reason))
		}
	}

	if len(result.Errors) > 0 {
		sb.WriteString("\nValidation errors:\n")
		for _, e := range result.Errors {
			reason := e.Reason
			if len(reason) > 35 {
				reason = reason[:32] + "..."
			}
			sb.WriteString(fmt.Sprintf("  ⚠ %s: %s\n", e.FieldID, reason))
		}
	}

	p.printBox("FILL RESULT", strings.TrimSuffix(sb.String(), "\n"))
}
