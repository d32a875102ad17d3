// Package domain defines the core business entities and errors.
package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrTaskNotFound is returned when a task id is unknown to the registry.
	ErrTaskNotFound = errors.New("task not found")

	// ErrTaskNotCompleted is returned when a result is requested for a task
	// that has not reached the completed state.
	ErrTaskNotCompleted = errors.New("task not completed")

	// ErrUnsupportedDocument is returned at submission time for inputs that
	// are not PDF documents.
	ErrUnsupportedDocument = errors.New("only PDF files are supported")

	// ErrMissingInput is returned when neither a file nor a document URL was
	// provided with a submission.
	ErrMissingInput = errors.New("no file or document URL provided")

	// ErrInvalidExtractionType is returned for unknown extraction modes.
	ErrInvalidExtractionType = errors.New("invalid extraction type")
)
