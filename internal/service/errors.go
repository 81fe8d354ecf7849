package service

import (
	"errors"
	"fmt"

	"github.com/nathfavour/plantainbanana/internal/gate"
	"github.com/nathfavour/plantainbanana/internal/generation"
)

// ImageServiceError wraps errors from the image service with context.
type ImageServiceError struct {
	// Operation is the operation that failed (e.g., "generate", "auto_smile")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ImageServiceError.
func (e *ImageServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("image service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("image service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ImageServiceError) Unwrap() error {
	return e.Err
}

// NewImageServiceError creates a new ImageServiceError.
// Request validation and gate outcomes are returned directly without wrapping.
func NewImageServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, generation.ErrEmptyImage),
		errors.Is(err, generation.ErrEmptyPrompt),
		errors.Is(err, gate.ErrGateBusy):
		return err
	}

	return &ImageServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}
