// Package server provides the HTTP REST API for the form autofill agent.
package server

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/jonathan/form-autofill/internal/fill"
	"github.com/jonathan/form-autofill/internal/pipeline"
	"github.com/jonathan/form-autofill/internal/profile"
	"github.com/jonathan/form-autofill/internal/schemas"
	"github.com/jonathan/form-autofill/internal/types"
)

// analyzeRequest is the payload for POST /analyze.
type analyzeRequest struct {
	URL        string `json:"url,omitempty"`
	HTML       string `json:"html,omitempty"`
	UseBrowser bool   `json:"use_browser,omitempty"`
}

// fillRequest is the payload for POST /fill: pre-computed fills applied onto
// caller-supplied markup, no completion service involved.
type fillRequest struct {
	HTML  string          `json:"html"`
	Fills json.RawMessage `json:"fills"`
}

// fillResponse carries the fill outcome and the mutated document.
type fillResponse struct {
	Result *types.FillResult `json:"result"`
	HTML   string            `json:"html"`
}

// runRequest is the payload for POST /run: the full pipeline.
type runRequest struct {
	URL        string          `json:"url,omitempty"`
	HTML       string          `json:"html,omitempty"`
	Profile    json.RawMessage `json:"profile"`
	JobContext string          `json:"job_context,omitempty"`
	UseBrowser bool            `json:"use_browser,omitempty"`
}

// handleAnalyze extracts form fields and job context without filling.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" && req.HTML == "" {
		s.errorResponse(w, http.StatusBadRequest, "either 'url' or 'html' is required")
		return
	}

	analysis, err := s.runner.Analyze(r.Context(), pipeline.RunOptions{
		URL:        req.URL,
		HTML:       req.HTML,
		UseBrowser: req.UseBrowser,
		Verbose:    s.verbose,
	})
	if err != nil {
		log.Printf("analyze failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), PublicMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, analysis)
}

// handleFill applies caller-supplied fills onto caller-supplied markup.
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	var req fillRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.HTML == "" {
		s.errorResponse(w, http.StatusBadRequest, "'html' is required")
		return
	}
	if len(req.Fills) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "'fills' is required")
		return
	}

	// The fills payload must satisfy the same schema an upstream reply does.
	wrapped, err := json.Marshal(map[string]json.RawMessage{"fills": req.Fills})
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid fills payload")
		return
	}
	if err := schemas.ValidateFillsResponse(wrapped); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	var fills []types.Fill
	if err := json.Unmarshal(req.Fills, &fills); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid fills payload")
		return
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(req.HTML))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "failed to parse HTML")
		return
	}

	engine := fill.NewEngine(doc)
	result := engine.FillAll(r.Context(), fills)

	html, err := doc.Html()
	if err != nil {
		log.Printf("failed to serialize filled document: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "failed to serialize filled document")
		return
	}

	s.jsonResponse(w, http.StatusOK, fillResponse{Result: result, HTML: html})
}

// handleRun executes the full pipeline: fetch, extract, generate, fill.
func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" && req.HTML == "" {
		s.errorResponse(w, http.StatusBadRequest, "either 'url' or 'html' is required")
		return
	}
	if len(req.Profile) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "'profile' is required")
		return
	}

	userProfile, err := profile.Parse(req.Profile)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	// Detach from the request context so a dropped connection does not abort
	// the paid completion call midway; the write timeout still bounds us.
	ctx, cancel := context.WithTimeout(context.Background(), s.httpServer.WriteTimeout)
	defer cancel()

	result, err := s.runner.Run(ctx, pipeline.RunOptions{
		URL:        req.URL,
		HTML:       req.HTML,
		Profile:    userProfile,
		JobContext: req.JobContext,
		UseBrowser: req.UseBrowser,
		Verbose:    s.verbose,
	})
	if err != nil {
		log.Printf("run failed: %v", err)
		s.errorResponse(w, HTTPStatus(err), PublicMessage(err))
		return
	}

	s.jsonResponse(w, http.StatusOK, result)
}

// handleGetArtifact returns one persisted run artifact.
func (s *Server) handleGetArtifact(w http.ResponseWriter, r *http.Request) {
	if s.db == nil {
		s.errorResponse(w, http.StatusNotFound, "persistence is not configured")
		return
	}

	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "invalid run id")
		return
	}
	step := r.PathValue("step")

	content, err := s.db.GetArtifact(r.Context(), runID, step)
	if err != nil {
		log.Printf("artifact lookup failed: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "artifact lookup failed")
		return
	}
	if content == nil {
		s.errorResponse(w, http.StatusNotFound, "artifact not found")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(content); err != nil {
		log.Printf("Error writing artifact response: %v", err)
	}
}
