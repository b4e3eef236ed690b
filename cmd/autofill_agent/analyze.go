package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/form-autofill/internal/pipeline"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract form fields and job context from an application page",
	Long: `Loads an application page (from a URL or a local HTML file), extracts its
fillable form fields and the job posting context, and prints the analysis as
JSON without generating or applying any fill values.`,
	RunE: runAnalyze,
}

var (
	analyzeURL        string
	analyzeHTMLPath   string
	analyzeUseBrowser bool
	analyzeVerbose    bool
	analyzeOutput     string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "Application page URL (mutually exclusive with --html)")
	analyzeCmd.Flags().StringVar(&analyzeHTMLPath, "html", "", "Path to a local HTML file (mutually exclusive with --url)")
	analyzeCmd.Flags().BoolVar(&analyzeUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	analyzeCmd.Flags().BoolVarP(&analyzeVerbose, "verbose", "v", false, "Print detailed debug information")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the analysis JSON to a file instead of stdout")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	if analyzeURL == "" && analyzeHTMLPath == "" {
		return fmt.Errorf("either --url or --html must be provided")
	}
	if analyzeURL != "" && analyzeHTMLPath != "" {
		return fmt.Errorf("--url and --html are mutually exclusive; provide only one")
	}

	var html string
	if analyzeHTMLPath != "" {
		data, err := os.ReadFile(analyzeHTMLPath)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}
		html = string(data)
	}

	runner := &pipeline.Runner{}
	analysis, err := runner.Analyze(context.Background(), pipeline.RunOptions{
		URL:        analyzeURL,
		HTML:       html,
		UseBrowser: analyzeUseBrowser,
		Verbose:    analyzeVerbose,
	})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(analysis, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode analysis: %w", err)
	}

	if analyzeOutput != "" {
		if err := os.WriteFile(analyzeOutput, append(out, '\n'), 0o644); err != nil {
			return fmt.Errorf("failed to write analysis: %w", err)
		}
		fmt.Printf("Analysis written to %s (%d fields)\n", analyzeOutput, len(analysis.Fields))
		return nil
	}

	fmt.Println(string(out))
	return nil
}
