package errutils

import (
	"errors"
	"net/http"
)

// HTTPError is an error that carries the HTTP status code to be sent to the caller.
type HTTPError struct {
	// Status is the HTTP status code.
	Status int `json:"-"`
	// Code is the textual representation of the status code, example: "NOT_FOUND".
	Code string `json:"code"`
	// Reason is an optional human-readable explanation.
	Reason string `json:"reason,omitempty"`
}

// Error implements the error interface.
func (h *HTTPError) Error() string {
	if h.Reason == "" {
		return h.Code
	}
	return h.Code + ": " + h.Reason
}

// WithReasonStr returns a copy of the error with the given reason.
func (h *HTTPError) WithReasonStr(reason string) *HTTPError {
	clone := *h
	clone.Reason = reason
	return &clone
}

// WithReasonErr returns a copy of the error with the given error's message as the reason.
func (h *HTTPError) WithReasonErr(err error) *HTTPError {
	if err == nil {
		return h.WithReasonStr("")
	}
	return h.WithReasonStr(err.Error())
}

// ToHTTPError converts any error into an *HTTPError.
// Unknown errors are converted into an internal server error.
func ToHTTPError(err error) *HTTPError {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return InternalServerError()
}

func newHTTPError(status int, code string) *HTTPError {
	return &HTTPError{Status: status, Code: code}
}

// BadRequest is for logically incorrect requests.
func BadRequest() *HTTPError { return newHTTPError(http.StatusBadRequest, "BAD_REQUEST") }

// Unauthorized is for requests with invalid credentials.
func Unauthorized() *HTTPError { return newHTTPError(http.StatusUnauthorized, "UNAUTHORIZED") }

// NotFound is for requests that try to access a non-existent resource.
func NotFound() *HTTPError { return newHTTPError(http.StatusNotFound, "NOT_FOUND") }

// InternalServerError is for unexpected errors.
func InternalServerError() *HTTPError {
	return newHTTPError(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR")
}
