// Package httperr maps loader and client failures to structured HTTP error responses.
package httperr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/alkmst-xyz/sweetcorn-web/web/api"
	"github.com/alkmst-xyz/sweetcorn-web/web/loaders"
)

// Error codes for structured responses.
const (
	CodeBadRequest    = "BAD_REQUEST"
	CodeNotFound      = "NOT_FOUND"
	CodeBadGateway    = "BAD_GATEWAY"
	CodeClientClosed  = "CLIENT_CLOSED_REQUEST"
	CodeInternalError = "INTERNAL_ERROR"
)

// StatusClientClosedRequest is the non-standard status logged when the client
// went away before the page was loaded.
const StatusClientClosedRequest = 499

// Error is a structured error response.
type Error struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// WithRequestID returns a copy of the error with the request ID set.
func (e *Error) WithRequestID(requestID string) *Error {
	return &Error{
		Code:      e.Code,
		Message:   e.Message,
		RequestID: requestID,
	}
}

// New creates a new Error with the given code and message.
func New(code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *Error {
	return New(CodeNotFound, message)
}

// NewInternalError creates an internal server error.
func NewInternalError(message string) *Error {
	return New(CodeInternalError, message)
}

// HTTPStatusCode returns the HTTP status code for the error.
func (e *Error) HTTPStatusCode() int {
	switch e.Code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeBadGateway:
		return http.StatusBadGateway
	case CodeClientClosed:
		return StatusClientClosedRequest
	default:
		return http.StatusInternalServerError
	}
}

// FromError classifies err. Backend 404s stay 404, every other backend failure
// is a bad gateway, and cancellation by the caller is reported as client closed.
func FromError(err error) *Error {
	var (
		httpErr      *Error
		paramErr     *loaders.ParamError
		statusErr    *api.StatusError
		transportErr *api.TransportError
		decodeErr    *api.DecodeError
	)

	switch {
	case errors.Is(err, context.Canceled):
		return New(CodeClientClosed, "request canceled")
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &paramErr):
		return New(CodeBadRequest, paramErr.Error())
	case errors.Is(err, api.ErrTraceIDRequired):
		return New(CodeBadRequest, err.Error())
	case errors.As(err, &statusErr):
		msg := statusErr.Message()
		if statusErr.StatusCode == http.StatusNotFound {
			if msg == "" {
				msg = "resource not found"
			}
			return NewNotFoundError(msg)
		}
		if msg != "" {
			return New(CodeBadGateway, fmt.Sprintf("backend returned status %d: %s", statusErr.StatusCode, msg))
		}
		return New(CodeBadGateway, fmt.Sprintf("backend returned status %d", statusErr.StatusCode))
	case errors.As(err, &transportErr):
		if errors.Is(err, context.DeadlineExceeded) {
			return New(CodeBadGateway, "backend request timed out")
		}
		return New(CodeBadGateway, "backend unreachable")
	case errors.As(err, &decodeErr):
		return New(CodeBadGateway, "backend returned an invalid response")
	default:
		return NewInternalError("an unexpected error occurred")
	}
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an Error as a JSON response.
func WriteError(w http.ResponseWriter, err *Error) {
	WriteJSON(w, err.HTTPStatusCode(), err)
}
