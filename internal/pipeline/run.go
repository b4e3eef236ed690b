// Package pipeline provides the high-level orchestration for the form
// autofill process: load the page, extract its fields, generate fill values,
// and apply them back onto the document.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jonathan/form-autofill/internal/db"
	"github.com/jonathan/form-autofill/internal/extraction"
	"github.com/jonathan/form-autofill/internal/fetch"
	"github.com/jonathan/form-autofill/internal/fill"
	"github.com/jonathan/form-autofill/internal/llm"
	"github.com/jonathan/form-autofill/internal/observability"
	"github.com/jonathan/form-autofill/internal/types"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// RunOptions holds configuration for running the pipeline
type RunOptions struct {
	URL        string // Page to fetch; ignored when HTML is set
	HTML       string // Pre-fetched page markup
	Profile    *types.UserProfile
	JobContext string // Extra context; extracted from the page when empty
	UseBrowser bool
	Verbose    bool
	OnProgress ProgressCallback
}

// RunResult holds everything a run produced.
type RunResult struct {
	RunID      uuid.UUID         `json:"run_id,omitempty"`
	Fields     []types.FormField `json:"fields"`
	JobPosting types.JobPosting  `json:"job_posting"`
	Fills      []types.Fill      `json:"fills"`
	Result     *types.FillResult `json:"result"`
	HTML       string            `json:"html"` // The document after filling
}

// Runner wires the pipeline's collaborators. Zero-value fields get production
// defaults; tests inject fakes.
type Runner struct {
	Client      llm.Client
	Sleeper     fill.Sleeper
	SettleDelay time.Duration
	DB          *db.DB // Optional artifact persistence
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step, category, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: category,
			Message:  message,
			Content:  content,
		})
	}
}

// document resolves the page to operate on, from inline markup or the network.
func document(ctx context.Context, opts *RunOptions) (*goquery.Document, error) {
	if opts.HTML != "" {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(opts.HTML))
		if err != nil {
			return nil, fmt.Errorf("failed to parse HTML: %w", err)
		}
		return doc, nil
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("either a URL or HTML content is required")
	}
	fetchOpts := fetch.DefaultOptions()
	fetchOpts.UseBrowser = opts.UseBrowser
	fetchOpts.Verbose = opts.Verbose
	return fetch.Document(ctx, opts.URL, fetchOpts)
}

// Analyze runs only the read-only half of the pipeline: load the page and
// report its fields and job context without generating or applying fills.
func (r *Runner) Analyze(ctx context.Context, opts RunOptions) (*types.Analysis, error) {
	doc, err := document(ctx, &opts)
	if err != nil {
		return nil, err
	}

	fields := extraction.Extract(doc)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fillable form fields found on the page")
	}
	posting := fetch.ExtractJobPosting(doc)

	return &types.Analysis{
		Fields:     fields,
		JobPosting: posting,
		URL:        opts.URL,
	}, nil
}

// Run orchestrates the full autofill pipeline
func (r *Runner) Run(ctx context.Context, opts RunOptions) (*RunResult, error) {
	if opts.Profile == nil {
		return nil, fmt.Errorf("a user profile is required")
	}
	if r.Client == nil {
		return nil, fmt.Errorf("no fill generation client configured")
	}

	printer := observability.NewPrinter(os.Stdout)

	// Step 1: Load the page
	fmt.Printf("Step 1/4: Loading application page...\n")
	doc, err := document(ctx, &opts)
	if err != nil {
		return nil, fmt.Errorf("page loading failed: %w", err)
	}

	// Step 2: Extract fields and job context
	fmt.Printf("Step 2/4: Extracting form fields...\n")
	fields := extraction.Extract(doc)
	if len(fields) == 0 {
		return nil, fmt.Errorf("no fillable form fields found on the page")
	}
	if opts.Verbose {
		printer.PrintFields(fields)
	}
	emitProgress(&opts, db.StepFormFields, db.CategoryExtraction,
		fmt.Sprintf("Extracted %d form fields", len(fields)), fields)

	jobContext := opts.JobContext
	posting := fetch.ExtractJobPosting(doc)
	if jobContext == "" {
		jobContext = posting.Description
		if posting.Title != "" {
			jobContext = posting.Title + "\n\n" + jobContext
		}
	}
	if opts.Verbose {
		printer.PrintJobPosting(&posting)
	}
	emitProgress(&opts, db.StepJobPosting, db.CategoryExtraction,
		fmt.Sprintf("Extracted job context: %s", posting.Title), nil)

	// Create the database run once we know the field count
	var runID uuid.UUID
	if r.DB != nil {
		runID, err = r.DB.CreateRun(ctx, opts.URL, len(fields))
		if err != nil {
			fmt.Printf("Warning: Failed to create database run: %v\n", err)
		} else {
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Created database run: %s\n", runID)
			}
			_ = r.DB.SaveArtifact(ctx, runID, db.StepFormFields, db.CategoryExtraction, fields)
			_ = r.DB.SaveArtifact(ctx, runID, db.StepJobPosting, db.CategoryExtraction, posting)
		}
	}

	// Step 3: Generate fill values
	fmt.Printf("Step 3/4: Generating fill values...\n")
	fills, err := r.Client.GenerateFills(ctx, fields, opts.Profile, jobContext)
	if err != nil {
		if r.DB != nil && runID != uuid.Nil {
			_ = r.DB.CompleteRun(ctx, runID, "failed")
		}
		return nil, fmt.Errorf("fill generation failed: %w", err)
	}
	if opts.Verbose {
		printer.PrintFills(fills.Fills)
	}
	emitProgress(&opts, db.StepFillsResponse, db.CategoryGeneration,
		fmt.Sprintf("Generated %d fill values", len(fills.Fills)), fills)
	if r.DB != nil && runID != uuid.Nil {
		_ = r.DB.SaveArtifact(ctx, runID, db.StepFillsResponse, db.CategoryGeneration, fills)
	}

	// Step 4: Apply fills onto the document
	fmt.Printf("Step 4/4: Filling form fields...\n")
	engineOpts := []fill.EngineOption{}
	if r.Sleeper != nil {
		engineOpts = append(engineOpts, fill.WithSleeper(r.Sleeper), fill.WithSettleDelay(r.SettleDelay))
	}
	engine := fill.NewEngine(doc, engineOpts...)
	result := engine.FillAll(ctx, fills.Fills)
	if opts.Verbose {
		printer.PrintFillResult(result)
	}
	emitProgress(&opts, db.StepFillResult, db.CategoryFill,
		fmt.Sprintf("Filled %d fields (%d skipped, %d validation errors)",
			len(result.Filled), len(result.Skipped), len(result.Errors)), result)
	if r.DB != nil && runID != uuid.Nil {
		_ = r.DB.SaveArtifact(ctx, runID, db.StepFillResult, db.CategoryFill, result)
		_ = r.DB.CompleteRun(ctx, runID, "completed")
	}

	html, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize filled document: %w", err)
	}

	return &RunResult{
		RunID:      runID,
		Fields:     fields,
		JobPosting: posting,
		Fills:      fills.Fills,
		Result:     result,
		HTML:       html,
	}, nil
}
