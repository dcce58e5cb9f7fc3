package http

import (
	"context"
	stderrors "errors"
	"net/http"

	"github.com/c360/semdash/errors"
)

// mapErrorToHTTPStatus maps dashboard errors to HTTP status codes
func mapErrorToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusInternalServerError
	case stderrors.Is(err, errors.ErrScreenNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, errors.ErrSuperseded):
		return http.StatusConflict
	case stderrors.Is(err, errors.ErrRateLimited):
		return http.StatusTooManyRequests
	case stderrors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.IsTransient(err):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// sanitizeError returns a safe error message for external clients
func sanitizeError(err error) string {
	switch {
	case err == nil:
		return "internal server error"
	case stderrors.Is(err, errors.ErrScreenNotFound):
		return "screen not found"
	case stderrors.Is(err, errors.ErrSuperseded):
		return "render superseded by a newer request"
	case stderrors.Is(err, errors.ErrRateLimited):
		return "rate limit exceeded"
	case stderrors.Is(err, context.DeadlineExceeded):
		return "request timeout"
	case errors.IsInvalid(err):
		return "invalid request"
	case errors.IsTransient(err):
		return "service temporarily unavailable"
	default:
		return "internal server error"
	}
}

type errorResponse struct {
	Error     string `json:"error"`
	Status    int    `json:"status"`
	RequestID string `json:"request_id,omitempty"`
}

// writeError logs err and writes a sanitized error response
func (g *Gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	requestID := RequestID(r.Context())

	level := slogLevelFor(status)
	g.logger.Log(r.Context(), level, "Request failed",
		"request_id", requestID,
		"path", r.URL.Path,
		"status", status,
		"error", err)

	writeJSON(w, status, errorResponse{
		Error:     sanitizeError(err),
		Status:    status,
		RequestID: requestID,
	})
}
