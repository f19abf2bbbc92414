// Package errors holds the error bodies returned by the HTTP API.
package errors

import (
	stderrors "errors"
	"fmt"

	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
)

// APIError is the JSON body of every failed API call
type APIError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Field      string    `json:"field,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Status     int       `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func newError(code ErrorCode, message string) *APIError {
	return &APIError{Code: code, Message: message, Status: code.StatusCode()}
}

// NotFound creates a NOT_FOUND error
func NotFound(resource string) *APIError {
	return newError(ErrNotFound, fmt.Sprintf("%s not found", resource))
}

// Unauthorized creates an UNAUTHORIZED error
func Unauthorized(message string) *APIError {
	return newError(ErrUnauthorized, message)
}

// ValidationError creates a VALIDATION_ERROR
func ValidationError(field, message string) *APIError {
	e := newError(ErrValidation, message)
	e.Field = field
	return e
}

// BadRequest creates a BAD_REQUEST error
func BadRequest(message string) *APIError {
	return newError(ErrBadRequest, message)
}

// InternalError creates an INTERNAL_ERROR
func InternalError(message string) *APIError {
	return newError(ErrInternalError, message)
}

var codeByType = map[apperrors.ErrorType]ErrorCode{
	apperrors.ErrorTypeValidation:     ErrValidation,
	apperrors.ErrorTypeAuth:           ErrAuthFailed,
	apperrors.ErrorTypeUnauthorized:   ErrUnauthorized,
	apperrors.ErrorTypeSessionExpired: ErrUnauthorized,
	apperrors.ErrorTypeNotFound:       ErrNotFound,
	apperrors.ErrorTypeConflict:       ErrConflict,
	apperrors.ErrorTypeRateLimit:      ErrRateLimited,
	apperrors.ErrorTypeNetwork:        ErrServiceUnavail,
	apperrors.ErrorTypeTimeout:        ErrTimeout,
	apperrors.ErrorTypeServer:         ErrInternalError,
}

// FromError turns a service error into an API error. The user-facing notice
// becomes the message; the backend cause never reaches the body.
func FromError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	cliErr := apperrors.CategorizeError(err)
	if cliErr == nil {
		return InternalError("internal server error")
	}
	code, ok := codeByType[cliErr.Type]
	if !ok {
		return InternalError("internal server error")
	}
	e := newError(code, cliErr.Message)
	e.Suggestion = cliErr.Suggestion
	return e
}
