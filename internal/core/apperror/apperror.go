// Package apperror defines the uniform wire-level error representation.
// Every domain or backend error converts into an ErrorModel, which is the
// only error shape ever serialized across the protocol boundary.
package apperror

import (
	"errors"
	"net/http"
)

// ErrorModel is the wire error record.
type ErrorModel struct {
	// Type is a stable machine-readable tag for programmatic handling.
	Type string `json:"type"`

	// Code is the HTTP status code.
	Code int `json:"code"`

	// Message is the rendered human-readable description.
	Message string `json:"message"`

	// Stack is the ordered context trail, oldest first.
	Stack []string `json:"stack,omitempty"`

	// Source is the chained cause, attached only where diagnostically
	// necessary. Never serialized.
	Source error `json:"-"`

	// Retryable marks conflicts the caller may retry after re-reading
	// state. Guard violations are 409s too, but retrying them without a
	// state change cannot succeed, so they leave this unset.
	Retryable bool `json:"-"`
}

// ModelProvider is implemented by every error type that has a defined wire
// representation.
type ModelProvider interface {
	ErrorModel() ErrorModel
}

// FromError converts any error into its wire representation. Errors without
// a defined mapping render as a generic internal error so that no internal
// detail leaks to clients.
func FromError(err error) ErrorModel {
	var mp ModelProvider
	if errors.As(err, &mp) {
		return mp.ErrorModel()
	}
	return ErrorModel{
		Type:    "InternalServerError",
		Code:    http.StatusInternalServerError,
		Message: "Internal server error",
		Source:  err,
	}
}

// IsRetryable reports whether the wire representation of err signals a
// conflict the caller may retry after re-reading state.
func IsRetryable(err error) bool {
	return FromError(err).Retryable
}

// RequestError is a protocol-boundary error for malformed requests. It has
// no domain meaning and no context stack.
type RequestError struct {
	Type    string
	Code    int
	Message string
}

// NewBadRequest creates a 400 request error.
func NewBadRequest(message string) *RequestError {
	return &RequestError{Type: "BadRequestError", Code: http.StatusBadRequest, Message: message}
}

func (e *RequestError) Error() string {
	return e.Message
}

// ErrorModel implements ModelProvider.
func (e *RequestError) ErrorModel() ErrorModel {
	return ErrorModel{Type: e.Type, Code: e.Code, Message: e.Message}
}
