// Package server provides the HTTP REST API for the form autofill agent.
package server

import (
	"errors"
	"net/http"

	"github.com/jonathan/form-autofill/internal/fetch"
	"github.com/jonathan/form-autofill/internal/llm"
)

// HTTPStatus returns the HTTP status code to report for a pipeline error.
func HTTPStatus(err error) int {
	var (
		authErr    *llm.AuthError
		rateErr    *llm.RateLimitError
		retryErr   *llm.RetryExhaustedError
		parseErr   *llm.ParseError
		truncErr   *llm.TruncatedError
		fetchErr   *fetch.Error
		serverErr  *llm.ServerError
		statusErr  *llm.StatusError
		connectErr *llm.ConnectivityError
	)
	switch {
	case errors.As(err, &fetchErr):
		return http.StatusBadRequest
	case errors.As(err, &truncErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &rateErr), errors.As(err, &retryErr):
		return http.StatusServiceUnavailable
	case errors.As(err, &authErr), errors.As(err, &parseErr),
		errors.As(err, &serverErr), errors.As(err, &statusErr),
		errors.As(err, &connectErr):
		return http.StatusBadGateway
	case errors.Is(err, llm.ErrMissingAPIKey):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage maps a pipeline error to a message safe to return to API
// clients. Upstream credential and transport details stay in the server log.
func PublicMessage(err error) string {
	var (
		authErr  *llm.AuthError
		truncErr *llm.TruncatedError
		fetchErr *fetch.Error
	)
	switch {
	case errors.As(err, &fetchErr):
		return "failed to load the requested page"
	case errors.As(err, &truncErr):
		return err.Error()
	case errors.As(err, &authErr), errors.Is(err, llm.ErrMissingAPIKey):
		return "fill generation service is not available"
	case HTTPStatus(err) >= http.StatusInternalServerError:
		return "fill generation failed; please try again later"
	default:
		return err.Error()
	}
}
