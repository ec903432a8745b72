package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/KaramelBytes/depdash-cli/internal/dashboard"
	"github.com/go-chi/render"
)

// APIError is the JSON body of every failed API request.
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	RequestID  string `json:"request_id,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	if e.RequestID == "" {
		e.RequestID = RequestIDFromContext(r.Context())
	}
	render.Status(r, e.StatusCode)
	return nil
}

// NewAPIError creates a new APIError with the given parameters
func NewAPIError(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// InvalidParameter reports a query parameter that could not be used.
func InvalidParameter(name string, err error) *APIError {
	return NewAPIError(http.StatusBadRequest, "INVALID_PARAMETER", fmt.Sprintf("invalid parameter %q", name), err.Error())
}

// PageNotFound reports an unknown page id.
func PageNotFound(id string) *APIError {
	return NewAPIError(http.StatusNotFound, "PAGE_NOT_FOUND", fmt.Sprintf("page %q not found", id), id)
}

// InternalError hides err from the client.
func InternalError() *APIError {
	return NewAPIError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", nil)
}

// writeError maps err to an APIError and renders it.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, dashboard.ErrUnknownPage):
		apiErr = PageNotFound(r.URL.Query().Get("page"))
	default:
		s.log.WithError(err).WithField("request_id", RequestIDFromContext(r.Context())).Error("request failed")
		apiErr = InternalError()
	}
	_ = render.Render(w, r, apiErr)
}
