package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation          ErrorType = "validation"
	ErrorTypeNetwork             ErrorType = "network"
	ErrorTypeEngineNotFound      ErrorType = "engine_not_found"
	ErrorTypeLanguagePackMissing ErrorType = "language_pack_missing"
	ErrorTypeExtractionParse     ErrorType = "extraction_parse"
	ErrorTypeNoValidData         ErrorType = "no_valid_data"
	ErrorTypeTimeout             ErrorType = "timeout"
	ErrorTypeInternal            ErrorType = "internal"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeNetwork,
		Message:    message,
		StatusCode: http.StatusBadGateway,
		Cause:      cause,
	}
}

// NewEngineNotFoundError indicates the OCR engine could not be located.
// Fatal for the image being processed; callers report it to the user
// instead of feeding the error text into the extractor.
func NewEngineNotFoundError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeEngineNotFound,
		Message:    message,
		StatusCode: http.StatusFailedDependency,
		Cause:      cause,
	}
}

// NewLanguagePackMissingError indicates the OCR engine was located but the
// required script pack is absent. Distinct from EngineNotFound so user
// guidance can differ.
func NewLanguagePackMissingError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeLanguagePackMissing,
		Message:    message,
		StatusCode: http.StatusFailedDependency,
		Cause:      cause,
	}
}

// NewExtractionParseError indicates the language-model reply could not be
// parsed as the expected structure
func NewExtractionParseError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeExtractionParse,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
		Cause:      cause,
	}
}

// NewNoValidDataError indicates the pooled record set ended up empty after
// all images were processed. Kept distinguishable from a legitimate 0.0 GPA
// computed from zero-credit courses.
func NewNoValidDataError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNoValidData,
		Message:    message,
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeTimeout,
		Message:    message,
		StatusCode: http.StatusGatewayTimeout,
		Cause:      cause,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

// IsType checks if the error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
