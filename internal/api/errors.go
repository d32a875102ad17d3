package api

import (
	"errors"
	"net/http"

	"github.com/phrazzld/extract-api/internal/domain"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return http.StatusNotFound

	case errors.Is(err, domain.ErrTaskNotCompleted),
		errors.Is(err, domain.ErrUnsupportedDocument),
		errors.Is(err, domain.ErrMissingInput),
		errors.Is(err, domain.ErrInvalidExtractionType):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message based
// on the error type.
func GetSafeErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		return "Task not found"
	case errors.Is(err, domain.ErrTaskNotCompleted):
		return "Task is not completed yet"
	case errors.Is(err, domain.ErrUnsupportedDocument):
		return "Only PDF files are supported"
	case errors.Is(err, domain.ErrMissingInput):
		return "A file or pdf_url is required"
	case errors.Is(err, domain.ErrInvalidExtractionType):
		return "extraction_type must be one of: text, structured, ocr"
	default:
		return "Internal server error"
	}
}
