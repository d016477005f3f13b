package model

import (
	"errors"
	"fmt"
)

var (
	// ErrSchemaMismatch is returned when the aligned fields do not equal the model schema.
	ErrSchemaMismatch = errors.New("schema mismatch")

	// ErrInvalidValue is returned when a field value cannot be encoded as a number.
	ErrInvalidValue = errors.New("invalid field value")

	// ErrOutOfRange is returned when a field value falls outside its catalogue range.
	ErrOutOfRange = errors.New("field value out of range")

	// ErrModelUnavailable is returned when no model could be loaded at startup.
	ErrModelUnavailable = errors.New("model unavailable")
)

// ModelLoadError reports that the model artifact is missing or corrupt.
type ModelLoadError struct {
	Path string
	Err  error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("load model %s: %v", e.Path, e.Err)
}

func (e *ModelLoadError) Unwrap() error {
	return e.Err
}

// InferenceError reports a failed prediction request. It never outlives the request.
type InferenceError struct {
	Err error
}

// NewInferenceError wraps err unless it already is an InferenceError.
func NewInferenceError(err error) *InferenceError {
	var ie *InferenceError
	if errors.As(err, &ie) {
		return ie
	}
	return &InferenceError{Err: err}
}

func (e *InferenceError) Error() string {
	return fmt.Sprintf("inference failed: %v", e.Err)
}

func (e *InferenceError) Unwrap() error {
	return e.Err
}

// FieldError ties a validation failure to the offending field.
type FieldError struct {
	Field string
	Err   error
	Msg   string
}

func (e *FieldError) Error() string {
	if e.Msg == "" {
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Err, e.Msg)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
