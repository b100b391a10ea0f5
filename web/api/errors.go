package api

import (
	"errors"
	"fmt"
	"strings"
)

// ErrTraceIDRequired is returned by GetTrace when no trace ID is given.
var ErrTraceIDRequired = errors.New("trace id is required")

// TransportError reports a request that never produced a response.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("making request to %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError reports a response with a non-2xx status code. Errors holds the
// entries of a Jaeger error envelope when the body was one.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
	Errors     []JaegerError
}

func (e *StatusError) Error() string {
	if msg := e.Message(); msg != "" {
		return fmt.Sprintf("API error (%d) from %s: %s", e.StatusCode, e.URL, msg)
	}
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("API error (%d) from %s", e.StatusCode, e.URL)
	}
	return fmt.Sprintf("API error (%d) from %s: %s", e.StatusCode, e.URL, body)
}

// Message returns the backend's own description of the failure, if it sent one.
func (e *StatusError) Message() string {
	if len(e.Errors) == 0 {
		return ""
	}
	return e.Errors[0].Msg
}

// Unwrap exposes the first Jaeger error so errors.As can reach it.
func (e *StatusError) Unwrap() error {
	if len(e.Errors) == 0 {
		return nil
	}
	return &e.Errors[0]
}

// DecodeError reports a response body that is not valid JSON for the target type.
type DecodeError struct {
	URL string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding response from %s: %v", e.URL, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
