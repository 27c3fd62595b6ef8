package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrModelUnavailable indicates that no classifier was injected into the prediction pipeline.
	ErrModelUnavailable = errors.New("churn model not loaded")
	// ErrDimensionMismatch indicates a feature vector whose length differs from what the model expects.
	ErrDimensionMismatch = errors.New("feature vector dimension mismatch")
	// ErrUnsupportedArtifactVersion indicates an artifact written by an unknown format version.
	ErrUnsupportedArtifactVersion = errors.New("unsupported artifact format version")
)

// ValidationError reports out-of-domain customer input. Fields maps the field name to a message.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError creates an empty ValidationError.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for a field. The first message recorded for a field wins.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; exists {
		return
	}
	e.Fields[field] = message
}

// HasErrors reports whether any field failed validation.
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// ArtifactLoadError indicates a missing or corrupt trained artifact or dataset file.
// It is fatal at startup.
type ArtifactLoadError struct {
	Path string
	Err  error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error { return e.Err }

// InferenceError indicates the classifier could not score a vector.
type InferenceError struct {
	Err error
}

func (e *InferenceError) Error() string {
	return "inference failed: " + e.Err.Error()
}

func (e *InferenceError) Unwrap() error { return e.Err }
