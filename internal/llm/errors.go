package llm

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingAPIKey indicates no credential is configured. Configuration
// failures are fatal and never retried.
var ErrMissingAPIKey = errors.New("no API key configured; add one in settings")

// AuthError indicates the credential was rejected (HTTP 401). Terminal; the
// message is deliberately generic and never echoes the server body.
type AuthError struct{}

func (e *AuthError) Error() string {
	return "authentication failed: check your API key"
}

// RateLimitError indicates the service throttled the request (HTTP 429).
// Retryable with exponential backoff.
type RateLimitError struct{}

func (e *RateLimitError) Error() string {
	return "rate limited by the completion service"
}

// ServerError indicates a transient server fault (HTTP 5xx). Retryable with
// linear backoff.
type ServerError struct {
	StatusCode int
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("completion service error (status %d)", e.StatusCode)
}

// StatusError indicates an unexpected, non-retryable response status.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected response status %d", e.StatusCode)
}

// ConnectivityError indicates the request timed out or the connection failed.
// Retryable unless it occurs on the final attempt.
type ConnectivityError struct {
	Cause error
}

func (e *ConnectivityError) Error() string {
	return "request timed out or could not reach the completion service"
}

func (e *ConnectivityError) Unwrap() error { return e.Cause }

// ParseError indicates the response body could not be understood. The defect
// is in that specific response, not transient, so it is never retried.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("unexpected response format: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("unexpected response format: %s", e.Message)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// TruncatedError indicates the service cut its output off at the length
// limit. Terminal, and reported distinctly from a generic parse failure so
// the user can be told to split the task.
type TruncatedError struct{}

func (e *TruncatedError) Error() string {
	return "the form is too complex for a single request; try splitting it up"
}

// RetryExhaustedError aggregates a failed call after all attempts were used.
type RetryExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryExhaustedError) Error() string {
	return fmt.Sprintf("request failed after %d attempts: %v", e.Attempts, e.Last)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Last }

// RetryAfter suggests a user-facing wait before trying again, based on the
// classified error.
func RetryAfter(err error) time.Duration {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return time.Minute
	}
	return 0
}
