package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGeneration covers transport and backend failures: unreachable
	// backend, non-2xx status, timeouts, exhausted retries.
	ErrGeneration = errors.New("generation failed")

	// ErrSchemaMismatch means the backend answered but its output does not
	// satisfy the requested schema. It is never retried.
	ErrSchemaMismatch = errors.New("response does not match schema")

	// ErrBackendDisabled is returned when no generation backend is configured.
	ErrBackendDisabled = errors.New("generation backend is not configured")
)

// FieldError describes one invalid request field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// TransientError marks a backend failure that may succeed on retry.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return e.Err.Error() }

func (e *TransientError) Unwrap() error { return e.Err }

// Transient wraps err so the generation client will retry it.
func Transient(err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Err: err}
}
