package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType defines the category of the error
type ErrorType string

const (
	ErrorTypeQuotaExceeded     ErrorType = "QUOTA_EXCEEDED"
	ErrorTypeMissingIngredient ErrorType = "MISSING_INGREDIENT"
	ErrorTypeNoRecipesFound    ErrorType = "NO_RECIPES_FOUND"
	ErrorTypeInvalidTag        ErrorType = "INVALID_TAG"
	ErrorTypeValidation        ErrorType = "VALIDATION_ERROR"
	ErrorTypeProvider          ErrorType = "PROVIDER_ERROR"
	ErrorTypeInternal          ErrorType = "INTERNAL_ERROR"
)

// AppError represents a structured error for the application
type AppError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	ErrorCode string    `json:"errorCode"`
	Recovery  string    `json:"recoverySuggestion,omitempty"`
	Err       error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Code returns the application-specific error code
func (e *AppError) Code() string {
	return e.ErrorCode
}

// RecoverySuggestion returns the suggestion on how to recover from the error
func (e *AppError) RecoverySuggestion() string {
	return e.Recovery
}

// TypeOf returns the ErrorType of the first AppError in err's chain,
// or ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// Is reports whether err carries an AppError of the given type.
func Is(err error, t ErrorType) bool {
	if err == nil {
		return false
	}
	return TypeOf(err) == t
}

// NewQuotaError signals that the provider's daily call quota is exhausted.
func NewQuotaError(message string) *AppError {
	return &AppError{
		Type:      ErrorTypeQuotaExceeded,
		Message:   message,
		ErrorCode: "QUOTA_EXCEEDED",
		Recovery:  "Wait for the daily quota to reset. Do not retry.",
	}
}

// NewMissingIngredientError is returned when an ingredient search has no ingredients.
func NewMissingIngredientError() *AppError {
	return &AppError{
		Type:      ErrorTypeMissingIngredient,
		Message:   "no ingredients provided",
		ErrorCode: "MISSING_INGREDIENT",
		Recovery:  "Pass a comma separated list of ingredients.",
	}
}

// NewNoRecipesFoundError is returned when an ingredient search yields no ids.
func NewNoRecipesFoundError(ingredients string) *AppError {
	return &AppError{
		Type:      ErrorTypeNoRecipesFound,
		Message:   fmt.Sprintf("no recipes found for %q", ingredients),
		ErrorCode: "NO_RECIPES_FOUND",
		Recovery:  "Try different ingredients.",
	}
}

// NewInvalidTagError is returned when a tag is not in the allow-list.
func NewInvalidTagError(tag string) *AppError {
	return &AppError{
		Type:      ErrorTypeInvalidTag,
		Message:   fmt.Sprintf("invalid tag %q", tag),
		ErrorCode: "INVALID_TAG",
		Recovery:  "Use a diet, intolerance, cuisine or meal type tag.",
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, errorCode string, suggestion string) *AppError {
	return &AppError{
		Type:      ErrorTypeValidation,
		Message:   message,
		ErrorCode: errorCode,
		Recovery:  suggestion,
	}
}

// NewProviderError wraps a failure talking to the recipe provider.
func NewProviderError(message string, errorCode string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeProvider,
		Message:   message,
		ErrorCode: errorCode,
		Recovery:  "Try again later.",
		Err:       err,
	}
}
