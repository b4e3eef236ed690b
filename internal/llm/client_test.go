package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/form-autofill/internal/types"
)

// fakeClock records requested sleeps instead of blocking.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (f *fakeClock) Now() time.Time { return time.Unix(0, 0) }

func (f *fakeClock) Sleep(_ context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sleeps = append(f.sleeps, d)
	return nil
}

func successBody(text string) string {
	body, _ := json.Marshal(map[string]any{
		"content":     []map[string]string{{"text": text}},
		"stop_reason": "end_turn",
	})
	return string(body)
}

func testFields() []types.FormField {
	return []types.FormField{{ID: "email", Kind: types.KindEmail, Label: "Email"}}
}

func newTestClient(t *testing.T, baseURL string, clk Clock, opts ...Option) *AnthropicClient {
	t.Helper()
	cfg := &Config{
		BaseURL:     baseURL,
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		MaxDelay:    30 * time.Second,
	}
	all := append([]Option{
		WithClock(clk),
		WithKeyProvider(StaticKeyProvider("test-key")),
	}, opts...)
	return NewAnthropicClient(cfg, all...)
}

func TestGenerateFillsSuccess(t *testing.T) {
	var gotHeaders http.Header
	var gotBody messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(successBody(`{"fills": [{"fieldId": "email", "value": "a@b.com", "confidence": "high", "reasoning": "r"}]}`)))
	}))
	defer srv.Close()

	clk := &fakeClock{}
	client := newTestClient(t, srv.URL, clk)

	resp, err := client.GenerateFills(context.Background(), testFields(), &types.UserProfile{Email: "a@b.com"}, "")
	require.NoError(t, err)
	require.Len(t, resp.Fills, 1)
	assert.Equal(t, "email", resp.Fills[0].FieldID)

	assert.Equal(t, "test-key", gotHeaders.Get("x-api-key"))
	assert.Equal(t, "2023-06-01", gotHeaders.Get("anthropic-version"))
	require.Len(t, gotBody.Messages, 1)
	assert.Contains(t, gotBody.Messages[0].Content, `"email"`)
	assert.Empty(t, clk.sleeps)
}

func TestGenerateFillsMissingKey(t *testing.T) {
	client := NewAnthropicClient(nil, WithKeyProvider(StaticKeyProvider("")))
	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}

func TestGenerateFillsAuthFailureIsTerminal(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	clk := &fakeClock{}
	client := newTestClient(t, srv.URL, clk)

	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, 1, calls, "401 must not be retried")
	assert.Empty(t, clk.sleeps)
}

func TestGenerateFillsServerFaultExhaustsRetries(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	clk := &fakeClock{}
	client := newTestClient(t, srv.URL, clk)

	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Contains(t, err.Error(), "after 3 attempts")

	var serverErr *ServerError
	assert.ErrorAs(t, err, &serverErr)

	assert.Equal(t, 3, calls)
	// Linear backoff between attempts, none after the last.
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clk.sleeps)
}

func TestGenerateFillsRateLimitBacksOffExponentially(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(successBody(`{"fills": []}`)))
	}))
	defer srv.Close()

	clk := &fakeClock{}
	client := newTestClient(t, srv.URL, clk)

	resp, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	require.NoError(t, err)
	assert.Empty(t, resp.Fills)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clk.sleeps)
}

func TestGenerateFillsBackoffIsCapped(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	clk := &fakeClock{}
	cfg := &Config{
		BaseURL:     srv.URL,
		MaxAttempts: 4,
		BaseDelay:   10 * time.Second,
		MaxDelay:    15 * time.Second,
	}
	client := NewAnthropicClient(cfg, WithClock(clk), WithKeyProvider(StaticKeyProvider("k")))

	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	require.Error(t, err)
	assert.Equal(t, []time.Duration{10 * time.Second, 15 * time.Second, 15 * time.Second}, clk.sleeps)
}

func TestGenerateFillsTruncationIsTerminal(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		body, _ := json.Marshal(map[string]any{
			"content":     []map[string]string{{"text": `{"fills": [{"fieldId": "a"`}},
			"stop_reason": "max_tokens",
		})
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	clk := &fakeClock{}
	client := newTestClient(t, srv.URL, clk)

	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	var truncated *TruncatedError
	require.ErrorAs(t, err, &truncated)
	assert.Contains(t, err.Error(), "too complex")
	assert.Equal(t, 1, calls, "truncation must not be retried")
}

func TestGenerateFillsParseFailureIsTerminal(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(successBody("Sure, happy to help!")))
	}))
	defer srv.Close()

	clk := &fakeClock{}
	client := newTestClient(t, srv.URL, clk)

	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 1, calls, "a malformed response must not be retried")
}

func TestGenerateFillsUnexpectedStatusIsTerminal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeClock{})

	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadRequest, statusErr.StatusCode)
}

func TestGenerateFillsConnectivityRetried(t *testing.T) {
	// A server that is immediately closed refuses connections.
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	clk := &fakeClock{}
	client := newTestClient(t, srv.URL, clk)

	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	var connErr *ConnectivityError
	assert.ErrorAs(t, err, &connErr)
	assert.Len(t, clk.sleeps, 2)
}

func TestGenerateFillsPanickingListenerDoesNotAbort(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(successBody(`{"fills": []}`)))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, &fakeClock{},
		WithProgress(func(Progress) { panic("listener bug") }))

	resp, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	require.NoError(t, err)
	assert.NotNil(t, resp)
}

func TestGenerateFillsProgressSequence(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(successBody(`{"fills": []}`)))
	}))
	defer srv.Close()

	var events []Progress
	client := newTestClient(t, srv.URL, &fakeClock{},
		WithProgress(func(p Progress) { events = append(events, p) }))

	_, err := client.GenerateFills(context.Background(), testFields(), nil, "")
	require.NoError(t, err)

	// attempt 1 start, retry notice, attempt 2 start.
	require.Len(t, events, 3)
	assert.Equal(t, 1, events[0].Attempt)
	assert.Contains(t, events[1].Message, "retrying in")
	assert.Equal(t, time.Second, events[1].Wait)
	assert.Equal(t, 2, events[2].Attempt)
}

func TestRetryAfter(t *testing.T) {
	assert.Equal(t, time.Minute, RetryAfter(&RateLimitError{}))
	assert.Equal(t, time.Minute, RetryAfter(&RetryExhaustedError{Attempts: 3, Last: &RateLimitError{}}))
	assert.Equal(t, time.Duration(0), RetryAfter(&AuthError{}))
}
