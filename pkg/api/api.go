package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"vulnguardian/pkg/logger"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	CodeInternalServerError = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable  = "SERVICE_UNAVAILABLE"
)

// Response represents the standard API response format
type Response struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
	Data      any    `json:"data,omitempty"`
	Error     *Error `json:"error,omitempty"`
}

// Error represents the standard error format
type Error struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorDetail contains detailed error information for a specific field or dependency
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Api interface defines methods for standard API responses
type Api interface {
	Success(ctx context.Context, w http.ResponseWriter, data any)
	Error(ctx context.Context, w http.ResponseWriter, statusCode int, apiErr *Error)
	NotFound(ctx context.Context, w http.ResponseWriter, message string)
	MethodNotAllowed(ctx context.Context, w http.ResponseWriter, message string)
	InternalServerError(ctx context.Context, w http.ResponseWriter, message string)
	ServiceUnavailable(ctx context.Context, w http.ResponseWriter, message string, details ...ErrorDetail)
}

type api struct {
	log logger.LoggerInterface
}

// New creates a new instance of the API response handler.
// Encoding failures are reported to log.
func New(log logger.LoggerInterface) Api {
	if log == nil {
		log = logger.NoOpLogger()
	}
	return &api{log: log}
}

// buildResponse creates a basic response structure
func (a *api) buildResponse(ctx context.Context, status string, data any, apiErr *Error) Response {
	return Response{
		RequestID: middleware.GetReqID(ctx),
		Status:    status,
		Data:      data,
		Error:     apiErr,
	}
}

func (a *api) write(ctx context.Context, w http.ResponseWriter, statusCode int, response Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		a.log.ErrorContext(ctx, "failed to encode response", "error", err, "request_id", response.RequestID)
	}
}

// Success sends a successful response with data
func (a *api) Success(ctx context.Context, w http.ResponseWriter, data any) {
	a.write(ctx, w, http.StatusOK, a.buildResponse(ctx, StatusSuccess, data, nil))
}

// Error sends an error response with specific HTTP status code and error details
func (a *api) Error(ctx context.Context, w http.ResponseWriter, statusCode int, apiErr *Error) {
	a.write(ctx, w, statusCode, a.buildResponse(ctx, StatusError, nil, apiErr))
}

// NotFound sends a 404 Not Found response
func (a *api) NotFound(ctx context.Context, w http.ResponseWriter, message string) {
	a.Error(ctx, w, http.StatusNotFound, &Error{Code: CodeNotFound, Message: message})
}

// MethodNotAllowed sends a 405 Method Not Allowed response
func (a *api) MethodNotAllowed(ctx context.Context, w http.ResponseWriter, message string) {
	a.Error(ctx, w, http.StatusMethodNotAllowed, &Error{Code: CodeMethodNotAllowed, Message: message})
}

// InternalServerError sends a 500 Internal Server Error response
func (a *api) InternalServerError(ctx context.Context, w http.ResponseWriter, message string) {
	a.Error(ctx, w, http.StatusInternalServerError, &Error{Code: CodeInternalServerError, Message: message})
}

// ServiceUnavailable sends a 503 Service Unavailable response
func (a *api) ServiceUnavailable(ctx context.Context, w http.ResponseWriter, message string, details ...ErrorDetail) {
	a.Error(ctx, w, http.StatusServiceUnavailable, &Error{
		Code:    CodeServiceUnavailable,
		Message: message,
		Details: details,
	})
}
