package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the failure taxonomy of the two pipelines.
// Callers classify failures with errors.Is against these.
var (
	// ErrDataLoad covers a missing or malformed catalog CSV.
	ErrDataLoad = errors.New("catalog data load failed")
	// ErrIndexNotFound means the vector index has not been built yet.
	ErrIndexNotFound = errors.New("vector index not found")
	// ErrEmbedService covers persistent embedding-service failures.
	ErrEmbedService = errors.New("embedding service failed")
	// ErrGeneration covers chat-completion failures (timeout, rate limit, auth).
	ErrGeneration = errors.New("answer generation failed")
	// ErrInvalidArgument covers bad caller input (empty question, k <= 0).
	ErrInvalidArgument = errors.New("invalid argument")
)

// ValidationError wraps a sentinel with the offending field and value.
type ValidationError struct {
	Field   string
	Value   string
	Wrapped error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s: %s (value=%q)", e.Wrapped, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Wrapped }

// NewValidationError creates a ValidationError.
func NewValidationError(field, value string, wrapped error) *ValidationError {
	return &ValidationError{Field: field, Value: value, Wrapped: wrapped}
}
