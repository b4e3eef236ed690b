package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/form-autofill/internal/prompt"
	"github.com/jonathan/form-autofill/internal/types"
)

// Client is the abstraction the orchestrator depends on for fill generation.
type Client interface {
	// GenerateFills performs one logical generate-fills operation: prompt
	// construction, the external round trip with retries, and defensive
	// parsing of the reply.
	GenerateFills(ctx context.Context, fields []types.FormField, profile *types.UserProfile, jobContext string) (*types.FillsResponse, error)
}

// HTTPDoer is the subset of *http.Client the client needs, injectable for
// tests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Progress is a best-effort notification emitted before and between attempts.
type Progress struct {
	Attempt     int
	MaxAttempts int
	Wait        time.Duration
	Message     string
}

// ProgressFunc consumes progress notifications. Delivery failures (including
// panics in the listener) never abort the retry loop.
type ProgressFunc func(Progress)

// AnthropicClient talks to the messages endpoint directly over HTTP. The
// retry taxonomy depends on raw status codes and the stop_reason field, so no
// SDK sits in between.
type AnthropicClient struct {
	config     Config
	httpClient HTTPDoer
	clock      Clock
	keys       KeyProvider
	onProgress ProgressFunc
}

// Option configures an AnthropicClient.
type Option func(*AnthropicClient)

// WithHTTPDoer injects the HTTP transport.
func WithHTTPDoer(d HTTPDoer) Option { return func(c *AnthropicClient) { c.httpClient = d } }

// WithClock injects the clock used for backoff sleeps.
func WithClock(clk Clock) Option { return func(c *AnthropicClient) { c.clock = clk } }

// WithKeyProvider injects the credential source.
func WithKeyProvider(p KeyProvider) Option { return func(c *AnthropicClient) { c.keys = p } }

// WithProgress registers a progress listener.
func WithProgress(f ProgressFunc) Option { return func(c *AnthropicClient) { c.onProgress = f } }

// NewAnthropicClient creates a client with the given configuration. Nil
// config and unset options fall back to production defaults.
func NewAnthropicClient(cfg *Config, opts ...Option) *AnthropicClient {
	c := &AnthropicClient{
		config: cfg.normalized(),
		clock:  NewClock(),
		keys:   EnvKeyProvider{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	return c
}

// GenerateFills implements Client.
func (c *AnthropicClient) GenerateFills(ctx context.Context, fields []types.FormField, profile *types.UserProfile, jobContext string) (*types.FillsResponse, error) {
	instruction := prompt.Build(fields, profile, jobContext)
	return c.generate(ctx, instruction)
}

// generate runs the per-call retry state machine. RetryState (attempt
// counter, last error, next delay) lives only for the duration of this
// invocation.
func (c *AnthropicClient) generate(ctx context.Context, instruction string) (*types.FillsResponse, error) {
	key, err := c.keys.RetrieveAPIKey(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve API key: %w", err)
	}
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	var lastErr error
	for attempt := 1; attempt <= c.config.MaxAttempts; attempt++ {
		c.notify(Progress{
			Attempt:     attempt,
			MaxAttempts: c.config.MaxAttempts,
			Message:     "contacting completion service",
		})

		reply, err := c.attempt(ctx, key, instruction)
		if err == nil {
			if reply.StopReason == stopMaxTokens {
				return nil, &TruncatedError{}
			}
			parsed, perr := ParseFillsResponse(reply.Text)
			if perr != nil {
				// The defect is in this specific response; retrying cannot fix it.
				return nil, perr
			}
			return parsed, nil
		}

		lastErr = err
		wait, retryable := c.classify(err, attempt)
		if !retryable {
			return nil, err
		}
		if attempt == c.config.MaxAttempts {
			break
		}

		c.notify(Progress{
			Attempt:     attempt,
			MaxAttempts: c.config.MaxAttempts,
			Wait:        wait,
			Message:     fmt.Sprintf("retrying in %s", wait),
		})
		if serr := c.clock.Sleep(ctx, wait); serr != nil {
			return nil, fmt.Errorf("fill generation cancelled: %w", serr)
		}
	}

	return nil, &RetryExhaustedError{Attempts: c.config.MaxAttempts, Last: lastErr}
}

// classify maps a classified attempt error to its backoff delay and
// retryability: 429 backs off exponentially (base doubled per attempt,
// capped), 5xx and connectivity failures back off linearly, everything else
// is terminal.
func (c *AnthropicClient) classify(err error, attempt int) (time.Duration, bool) {
	var (
		rateLimited  *RateLimitError
		serverFault  *ServerError
		connectivity *ConnectivityError
	)
	switch {
	case errors.As(err, &rateLimited):
		delay := c.config.BaseDelay << (attempt - 1)
		if delay > c.config.MaxDelay {
			delay = c.config.MaxDelay
		}
		return delay, true
	case errors.As(err, &serverFault), errors.As(err, &connectivity):
		delay := c.config.BaseDelay * time.Duration(attempt)
		if delay > c.config.MaxDelay {
			delay = c.config.MaxDelay
		}
		return delay, true
	default:
		return 0, false
	}
}

// reply is the decoded success body of one attempt.
type reply struct {
	Text       string
	StopReason string
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// attempt performs exactly one timeout-bounded round trip and classifies the
// outcome. It never reads the server's error body into a user-facing message.
func (c *AnthropicClient) attempt(ctx context.Context, key, instruction string) (*reply, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.config.Model,
		MaxTokens: c.config.MaxTokens,
		Messages:  []message{{Role: "user", Content: instruction}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodPost, strings.TrimRight(c.config.BaseURL, "/")+messagesPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", key)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &ConnectivityError{Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		drain(resp.Body)
		return nil, &AuthError{}
	case resp.StatusCode == http.StatusTooManyRequests:
		drain(resp.Body)
		return nil, &RateLimitError{}
	case resp.StatusCode >= 500:
		drain(resp.Body)
		return nil, &ServerError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		drain(resp.Body)
		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ConnectivityError{Cause: err}
	}

	var decoded messagesResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, &ParseError{Message: "success body is not valid JSON", Cause: err}
	}
	if len(decoded.Content) == 0 {
		return nil, &ParseError{Message: "success body has no content"}
	}

	var parts []string
	for _, part := range decoded.Content {
		if part.Text != "" {
			parts = append(parts, part.Text)
		}
	}
	if len(parts) == 0 {
		return nil, &ParseError{Message: "success body has no text content"}
	}

	return &reply{Text: strings.Join(parts, ""), StopReason: decoded.StopReason}, nil
}

// notify delivers a progress notification without letting a broken or absent
// listener affect the retry loop.
func (c *AnthropicClient) notify(p Progress) {
	if c.onProgress == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[LLM] progress listener panicked: %v", r)
		}
	}()
	c.onProgress(p)
}

func drain(r io.Reader) {
	_, _ = io.Copy(io.Discard, io.LimitReader(r, 4096))
}
