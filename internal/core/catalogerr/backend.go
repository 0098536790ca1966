// Package catalogerr holds the error classes shared by every catalog store
// operation: backend failures (infrastructure) and database integrity
// violations (corrupt persisted state). Operation-specific errors live next
// to their domain.
package catalogerr

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"icehouse/internal/core/apperror"
	"icehouse/internal/core/errstack"
)

// Classification distinguishes backend failures that are safe to retry from
// everything else.
type Classification string

const (
	// Unexpected is the default class for any failure that does not map to
	// a recognized conflict condition.
	Unexpected Classification = "Unexpected"

	// ConcurrentModification means a write lost a race against another
	// writer (e.g. an optimistic-concurrency version check failed). Callers
	// are expected to re-read state and retry the whole operation.
	ConcurrentModification Classification = "ConcurrentModification"
)

// BackendError wraps an arbitrary storage-layer failure with an explicit
// classification, a context stack and the original cause.
type BackendError struct {
	Classification Classification
	errstack.Stack
	Source error
}

// Classify wraps source with an explicit classification.
func Classify(source error, class Classification) *BackendError {
	return &BackendError{Classification: class, Source: source}
}

// NewUnexpected wraps source with the default Unexpected classification.
func NewUnexpected(source error) *BackendError {
	return Classify(source, Unexpected)
}

// Error renders the classification, message, accumulated context stack and
// the native cause chain. This rendering is for operator diagnostics; the
// wire representation is ErrorModel.
func (e *BackendError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "CatalogBackendError (%s): %v\n", e.Classification, e.Source)
	writeStack(&b, e.Stack)
	if cause := errors.Unwrap(e.Source); cause != nil {
		b.WriteString("Caused by:\n")
		writeChain(&b, cause)
	}
	return b.String()
}

// Unwrap exposes the boxed source for errors.Is/As diagnostics.
func (e *BackendError) Unwrap() error {
	return e.Source
}

// Equal compares classification, context stack and the string rendering of
// the source. Two backend errors are equal iff they describe the same
// condition with the same textual cause, which keeps test assertions
// deterministic across source types.
func (e *BackendError) Equal(other *BackendError) bool {
	if other == nil {
		return false
	}
	if e.Classification != other.Classification {
		return false
	}
	if len(e.Stack) != len(other.Stack) {
		return false
	}
	for i, d := range e.Stack {
		if other.Stack[i] != d {
			return false
		}
	}
	return fmt.Sprint(e.Source) == fmt.Sprint(other.Source)
}

// ErrorModel maps Unexpected to 500 and ConcurrentModification to 409.
// 503 would be semantically closer to "try again later", but some older
// catalog clients retry 503 automatically in ways that can repeat
// side effects, so 500 stays the conservative default.
func (e *BackendError) ErrorModel() apperror.ErrorModel {
	code := http.StatusInternalServerError
	if e.Classification == ConcurrentModification {
		code = http.StatusConflict
	}
	return apperror.ErrorModel{
		Type:      "CatalogBackendError",
		Code:      code,
		Message:   fmt.Sprintf("Catalog backend error (%s): %v", e.Classification, e.Source),
		Stack:     e.Details(),
		Retryable: e.Classification == ConcurrentModification,
	}
}

// DatabaseIntegrityError signals that the persisted state violates an
// expected invariant: a dangling foreign reference, an unparseable stored
// value. Distinct from BackendError because it means corrupt data, not a
// transient backend failure, and it must never be silently swallowed.
type DatabaseIntegrityError struct {
	Message string
	errstack.Stack
}

// NewIntegrity creates a DatabaseIntegrityError with the given message.
func NewIntegrity(message string) *DatabaseIntegrityError {
	return &DatabaseIntegrityError{Message: message}
}

func (e *DatabaseIntegrityError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "DatabaseIntegrityError: %s\n", e.Message)
	writeStack(&b, e.Stack)
	return b.String()
}

// ErrorModel maps integrity violations to 500.
func (e *DatabaseIntegrityError) ErrorModel() apperror.ErrorModel {
	return apperror.ErrorModel{
		Type:    "DatabaseIntegrityError",
		Code:    http.StatusInternalServerError,
		Message: fmt.Sprintf("Database integrity error: %s", e.Message),
		Stack:   e.Details(),
	}
}

func writeStack(b *strings.Builder, stack errstack.Stack) {
	if len(stack) == 0 {
		return
	}
	b.WriteString("Stack:\n")
	for _, detail := range stack {
		fmt.Fprintf(b, "  %s\n", detail)
	}
}

func writeChain(b *strings.Builder, err error) {
	fmt.Fprintf(b, "%v\n", err)
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(cause) {
		fmt.Fprintf(b, "Caused by:\n\t%v\n", cause)
	}
}
