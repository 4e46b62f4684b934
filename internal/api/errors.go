package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// Error is a failure reported by the setup API. Message carries the
// backend-provided text when the response body had one; RetryAfter is
// only set for rate-limit responses.
type Error struct {
	// StatusCode is the HTTP status of the failed response.
	StatusCode int
	// Message is the backend-provided error text, if any.
	Message string
	// RetryAfter is the wait time in seconds for 429 responses.
	RetryAfter int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("setup API error (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("setup API error (%d)", e.StatusCode)
}

// IsRateLimited reports whether the error is a 429 response.
func (e *Error) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

// AsError extracts an *Error from err, or nil.
func AsError(err error) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}
	return nil
}

// IsCanceled reports whether err is the result of context cancellation.
// Cancelled requests are not errors to surface: the caller tore down the
// operation and the eventual resolution must be a no-op.
func IsCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// errorBody is the JSON error payload the backend returns on failures.
type errorBody struct {
	Message    string `json:"message"`
	Error      string `json:"error"`
	RetryAfter int    `json:"retryAfter"`
}

// message returns whichever error text field the backend populated.
func (b errorBody) message() string {
	if b.Message != "" {
		return b.Message
	}
	return b.Error
}
