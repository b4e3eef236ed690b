package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/form-autofill/internal/types"
)

const formPage = `
<html><body>
	<h1>Senior Go Engineer</h1>
	<form>
		<label for="full-name">Full Name</label>
		<input id="full-name">
		<input id="email" type="email">
	</form>
</body></html>`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("JWT_SECRET", "")
	srv, err := New(Config{Port: 0, APIKey: "test-key"})
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if s, ok := body.(string); ok {
		reader = strings.NewReader(s)
	} else {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status": "ok"}`, rec.Body.String())
}

func TestHandleAnalyze(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/analyze", map[string]string{"html": formPage})
	require.Equal(t, http.StatusOK, rec.Code)

	var analysis types.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	require.Len(t, analysis.Fields, 2)
	assert.Equal(t, "full-name", analysis.Fields[0].ID)
	assert.Equal(t, "Senior Go Engineer", analysis.JobPosting.Title)
}

func TestHandleAnalyzeValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/analyze", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/analyze", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleFill(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodPost, "/fill", map[string]any{
		"html": formPage,
		"fills": []map[string]string{
			{"fieldId": "full-name", "value": "Ada Lovelace", "confidence": "high", "reasoning": "profile"},
			{"fieldId": "ghost", "value": "x", "confidence": "low", "reasoning": "none"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp fillResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Result)
	assert.Len(t, resp.Result.Filled, 1)
	assert.Len(t, resp.Result.Skipped, 1)
	assert.Contains(t, resp.HTML, "Ada Lovelace")
}

func TestHandleFillRejectsBadPayload(t *testing.T) {
	srv := newTestServer(t)

	// fills must be an array of objects.
	rec := doJSON(t, srv, http.MethodPost, "/fill", map[string]any{
		"html":  formPage,
		"fills": []string{"not-an-object"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/fill", map[string]any{"html": formPage})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/fill", map[string]any{
		"fills": []map[string]string{{"fieldId": "a", "value": "b"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRunValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/run", map[string]any{
		"profile": map[string]string{"full_name": "Ada"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, srv, http.MethodPost, "/run", map[string]any{"html": formPage})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// A profile that fails schema validation is rejected up front.
	rec = doJSON(t, srv, http.MethodPost, "/run", map[string]any{
		"html":    formPage,
		"profile": map[string]string{"shoe_size": "9"},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetArtifactWithoutDatabase(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv, http.MethodGet, "/runs/8b29f482-0c41-4c6e-9c6e-000000000000/artifacts/form_fields", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthMiddlewareEnforcedWhenConfigured(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-value")
	srv, err := New(Config{Port: 0, APIKey: "test-key"})
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)

	// No token: rejected.
	rec := doJSON(t, srv, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token: accepted.
	token, err := srv.jwtService.GenerateToken("test-client")
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	okRec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(okRec, req)
	assert.Equal(t, http.StatusOK, okRec.Code)

	// Garbage token: rejected.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	badRec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(badRec, req)
	assert.Equal(t, http.StatusUnauthorized, badRec.Code)
}

func TestRateLimitOnGenerationEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var lastCode int
	for i := 0; i < maxRunPerMin+1; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/fill", map[string]any{
			"html":  formPage,
			"fills": []map[string]string{{"fieldId": "full-name", "value": "Ada"}},
		})
		lastCode = rec.Code
	}
	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/analyze", nil)
	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
