// Package llm provides the resilient client for the external completion
// service: a single logical generate-fills operation wrapped in timeout,
// status classification, bounded retries, and defensive response parsing.
package llm

import "time"

// Wire protocol constants for the messages endpoint.
const (
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"
	stopMaxTokens  = "max_tokens"
	defaultModel   = "claude-sonnet-4-5"
	defaultBaseURL = "https://api.anthropic.com"
)

// Config holds the tunables for one client. Zero values fall back to the
// defaults, so a partially populated Config is usable.
type Config struct {
	BaseURL        string
	Model          string
	MaxTokens      int
	RequestTimeout time.Duration
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
}

// DefaultConfig returns the production configuration: three attempts, one
// second base delay, thirty second backoff cap.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:        defaultBaseURL,
		Model:          defaultModel,
		MaxTokens:      4096,
		RequestTimeout: 60 * time.Second,
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		MaxDelay:       30 * time.Second,
	}
}

// normalized fills in defaults for any zero field.
func (c *Config) normalized() Config {
	out := Config{}
	if c != nil {
		out = *c
	}
	def := DefaultConfig()
	if out.BaseURL == "" {
		out.BaseURL = def.BaseURL
	}
	if out.Model == "" {
		out.Model = def.Model
	}
	if out.MaxTokens <= 0 {
		out.MaxTokens = def.MaxTokens
	}
	if out.RequestTimeout <= 0 {
		out.RequestTimeout = def.RequestTimeout
	}
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = def.MaxAttempts
	}
	if out.BaseDelay <= 0 {
		out.BaseDelay = def.BaseDelay
	}
	if out.MaxDelay <= 0 {
		out.MaxDelay = def.MaxDelay
	}
	return out
}
