package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/form-autofill/internal/config"
	"github.com/jonathan/form-autofill/internal/db"
	"github.com/jonathan/form-autofill/internal/llm"
	"github.com/jonathan/form-autofill/internal/pipeline"
	"github.com/jonathan/form-autofill/internal/profile"
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Run the full autofill pipeline end-to-end",
	Long: `Orchestrates the entire autofill process: page loading -> field extraction ->
fill generation -> form filling -> validation probing.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runFill,
}

var (
	fillConfigPath  string
	fillURL         string
	fillHTMLPath    string
	fillProfilePath string
	fillJobContext  string
	fillOutput      string
	fillAPIKey      string
	fillModel       string
	fillDatabaseURL string
	fillUseBrowser  bool
	fillVerbose     bool
)

func init() {
	// Config file flag (processed first)
	fillCmd.Flags().StringVar(&fillConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	fillCmd.Flags().StringVarP(&fillURL, "url", "u", "", "Application page URL (mutually exclusive with --html)")
	fillCmd.Flags().StringVar(&fillHTMLPath, "html", "", "Path to a local HTML file (mutually exclusive with --url)")
	fillCmd.Flags().StringVarP(&fillProfilePath, "profile", "p", "", "Path to applicant profile JSON")
	fillCmd.Flags().StringVar(&fillJobContext, "job-context", "", "Job description text (extracted from the page if omitted)")
	fillCmd.Flags().StringVarP(&fillOutput, "output", "o", "filled.html", "Path to write the filled HTML document")
	fillCmd.Flags().BoolVar(&fillUseBrowser, "use-browser", false, "Use headless browser for SPA sites (requires Chrome)")
	fillCmd.Flags().BoolVarP(&fillVerbose, "verbose", "v", false, "Print detailed debug information")

	// API key can be passed as a flag, or read from env var ANTHROPIC_API_KEY
	fillCmd.Flags().StringVar(&fillAPIKey, "api-key", "", "Anthropic API key (optional, defaults to ANTHROPIC_API_KEY env var)")
	fillCmd.Flags().StringVar(&fillModel, "model", "", "Completion model to use (optional)")

	// Database URL for artifact persistence
	fillCmd.Flags().StringVar(&fillDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(fillCmd)
}

func runFill(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if fillConfigPath != "" {
		loadedCfg, err := config.LoadConfig(fillConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
		if fillVerbose {
			fmt.Printf("Loaded config from: %s\n", fillConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("url") {
		cfg.URL = fillURL
	}
	if cmd.Flags().Changed("profile") {
		cfg.Profile = fillProfilePath
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = fillAPIKey
	}
	if cmd.Flags().Changed("model") {
		cfg.Model = fillModel
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = fillDatabaseURL
	}
	if cmd.Flags().Changed("use-browser") {
		cfg.UseBrowser = fillUseBrowser
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = fillVerbose
	}

	// Step 3: Validate required fields
	if cfg.URL == "" && fillHTMLPath == "" {
		return fmt.Errorf("either --url or --html must be provided (via flag or config)")
	}
	if cfg.URL != "" && fillHTMLPath != "" {
		return fmt.Errorf("--url and --html are mutually exclusive; provide only one")
	}
	if cfg.Profile == "" {
		return fmt.Errorf("--profile is required (via flag or config)")
	}

	// Step 4: API key handling
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.APIKey == "" {
		return fmt.Errorf("ANTHROPIC_API_KEY environment variable or --api-key flag is required")
	}

	// Step 5: Database URL handling (optional artifact persistence)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	userProfile, err := profile.Load(cfg.Profile)
	if err != nil {
		return err
	}

	var html string
	if fillHTMLPath != "" {
		data, err := os.ReadFile(fillHTMLPath)
		if err != nil {
			return fmt.Errorf("failed to read HTML file: %w", err)
		}
		html = string(data)
	}

	llmCfg := llm.DefaultConfig()
	if cfg.Model != "" {
		llmCfg.Model = cfg.Model
	}
	client := llm.NewAnthropicClient(llmCfg,
		llm.WithKeyProvider(llm.StaticKeyProvider(cfg.APIKey)),
		llm.WithProgress(func(p llm.Progress) {
			if cfg.Verbose {
				fmt.Printf("[VERBOSE] attempt %d/%d: %s\n", p.Attempt, p.MaxAttempts, p.Message)
			}
		}),
	)

	runner := &pipeline.Runner{Client: client}
	if cfg.DatabaseURL != "" {
		database, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			fmt.Printf("Warning: Failed to connect to database: %v\n", err)
			fmt.Printf("Continuing without database persistence...\n")
		} else {
			defer database.Close()
			runner.DB = database
		}
	}

	result, err := runner.Run(ctx, pipeline.RunOptions{
		URL:        cfg.URL,
		HTML:       html,
		Profile:    userProfile,
		JobContext: fillJobContext,
		UseBrowser: cfg.UseBrowser,
		Verbose:    cfg.Verbose,
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(fillOutput, []byte(result.HTML), 0o644); err != nil {
		return fmt.Errorf("failed to write filled document: %w", err)
	}

	fmt.Printf("Done! Filled %d of %d fields (%d skipped, %d validation errors).\n",
		len(result.Result.Filled), result.Result.Total(),
		len(result.Result.Skipped), len(result.Result.Errors))
	fmt.Printf("Filled document written to %s\n", fillOutput)
	return nil
}
