package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"

	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// ErrorType categorizes different error types
type ErrorType string

const (
	// Network errors
	ErrorTypeNetwork ErrorType = "network"
	ErrorTypeTimeout ErrorType = "timeout"

	// Authentication errors
	ErrorTypeAuth           ErrorType = "auth"
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeSessionExpired ErrorType = "session_expired"

	// Validation errors
	ErrorTypeValidation ErrorType = "validation"

	// Backend errors
	ErrorTypeServer    ErrorType = "server"
	ErrorTypeNotFound  ErrorType = "not_found"
	ErrorTypeConflict  ErrorType = "conflict"
	ErrorTypeRateLimit ErrorType = "rate_limit"

	// Unknown errors
	ErrorTypeUnknown ErrorType = "unknown"
)

// CLIError is a user-facing error. Message never carries raw backend text;
// the backend error stays reachable through Unwrap.
type CLIError struct {
	Type       ErrorType
	Message    string
	Cause      error
	Suggestion string
	StatusCode int
}

// Error implements the error interface
func (e *CLIError) Error() string {
	return e.Message
}

// WithSuggestion adds a helpful suggestion to the error
func (e *CLIError) WithSuggestion(suggestion string) *CLIError {
	e.Suggestion = suggestion
	return e
}

// HasSuggestion returns true if the error has a suggestion
func (e *CLIError) HasSuggestion() bool {
	return e.Suggestion != ""
}

// Unwrap returns the underlying error
func (e *CLIError) Unwrap() error {
	return e.Cause
}

// NewCLIError creates a new CLI error
func NewCLIError(errorType ErrorType, message string, cause error) *CLIError {
	return &CLIError{
		Type:    errorType,
		Message: message,
		Cause:   cause,
	}
}

// NetworkError creates a network error
func NetworkError(message string) *CLIError {
	err := NewCLIError(ErrorTypeNetwork, message, nil)
	err.Suggestion = "Check your internet connection and try again."
	return err
}

// TimeoutError creates a timeout error
func TimeoutError() *CLIError {
	err := NewCLIError(ErrorTypeTimeout, "Request timed out", nil)
	err.Suggestion = "The backend is taking too long to respond. Try again in a moment."
	return err
}

// AuthError creates an authentication error
func AuthError(message string) *CLIError {
	err := NewCLIError(ErrorTypeAuth, message, nil)
	err.Suggestion = "Try logging in again with 'goodaideas auth login'"
	return err
}

// NotSignedInError is returned when an action needs a signed-in user
func NotSignedInError() *CLIError {
	err := NewCLIError(ErrorTypeUnauthorized, "You need to be signed in", remote.ErrNotAuthenticated)
	err.Suggestion = "Run 'goodaideas auth login' first."
	return err
}

// SessionExpiredError creates a session expired error
func SessionExpiredError() *CLIError {
	err := NewCLIError(ErrorTypeSessionExpired, "Your session has expired", nil)
	err.Suggestion = "Run 'goodaideas auth login' to refresh your session."
	return err
}

// ValidationError creates a validation error
func ValidationError(field, reason string) *CLIError {
	message := fmt.Sprintf("Validation error: %s - %s", field, reason)
	return NewCLIError(ErrorTypeValidation, message, nil)
}

// ServerError creates a server error
func ServerError() *CLIError {
	err := NewCLIError(ErrorTypeServer, "Server error", nil)
	err.Suggestion = "The backend encountered an error. Try again in a few moments."
	return err
}

// NotFoundError creates a not found error
func NotFoundError(resourceType, identifier string) *CLIError {
	return NewCLIError(ErrorTypeNotFound,
		fmt.Sprintf("%s not found: %s", resourceType, identifier),
		nil)
}

// ConflictError creates a conflict error
func ConflictError(message string) *CLIError {
	err := NewCLIError(ErrorTypeConflict, message, nil)
	err.Suggestion = "This already exists."
	return err
}

// classify picks a type and a suggestion for err without reading its text
func classify(err error) (ErrorType, string, int) {
	var re *remote.Error
	var netErr net.Error

	switch {
	case errors.Is(err, remote.ErrNotAuthenticated):
		return ErrorTypeUnauthorized, "Run 'goodaideas auth login' first.", 401
	case errors.Is(err, context.DeadlineExceeded):
		return ErrorTypeTimeout, "The backend is taking too long to respond. Try again in a moment.", 0
	case errors.As(err, &re):
		switch {
		case remote.IsNoRows(err):
			return ErrorTypeNotFound, "", re.Status
		case remote.IsConflict(err):
			return ErrorTypeConflict, "", re.Status
		case remote.IsUnauthorized(err):
			return ErrorTypeAuth, "Try logging in again with 'goodaideas auth login'", re.Status
		case re.Status == 429:
			return ErrorTypeRateLimit, "Too many requests. Wait a moment and try again.", re.Status
		case re.Status >= 500:
			return ErrorTypeServer, "The backend encountered an error. Try again in a few moments.", re.Status
		case re.Status >= 400:
			return ErrorTypeValidation, "", re.Status
		}
	case errors.As(err, &netErr):
		if netErr.Timeout() {
			return ErrorTypeTimeout, "The backend is taking too long to respond. Try again in a moment.", 0
		}
		return ErrorTypeNetwork, "Check your internet connection and try again.", 0
	}
	return ErrorTypeUnknown, "", 0
}

// Notice turns a failed action into the short message shown to users,
// "Failed to <action>". Backend wording never reaches the message.
func Notice(action string, err error) *CLIError {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) && cliErr.Type == ErrorTypeValidation {
		return cliErr
	}

	errType, suggestion, status := classify(err)
	return &CLIError{
		Type:       errType,
		Message:    "Failed to " + action,
		Cause:      err,
		Suggestion: suggestion,
		StatusCode: status,
	}
}

// CategorizeError converts a standard error into a CLIError
func CategorizeError(err error) *CLIError {
	if err == nil {
		return nil
	}

	// Check if it's already a CLIError
	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return cliErr
	}

	errType, suggestion, status := classify(err)
	if errType == ErrorTypeUnknown {
		errMsg := err.Error()
		switch {
		case strings.Contains(errMsg, "connection refused"):
			return NetworkError("Could not connect to the backend. Make sure it's running.")
		case strings.Contains(errMsg, "timeout"):
			return TimeoutError()
		}
		return NewCLIError(ErrorTypeUnknown, errMsg, err)
	}

	return &CLIError{
		Type:       errType,
		Message:    defaultMessage(errType),
		Cause:      err,
		Suggestion: suggestion,
		StatusCode: status,
	}
}

func defaultMessage(t ErrorType) string {
	switch t {
	case ErrorTypeUnauthorized:
		return "You need to be signed in"
	case ErrorTypeAuth:
		return "Invalid credentials"
	case ErrorTypeTimeout:
		return "Request timed out"
	case ErrorTypeNetwork:
		return "Could not reach the backend"
	case ErrorTypeNotFound:
		return "Not found"
	case ErrorTypeConflict:
		return "Already exists"
	case ErrorTypeRateLimit:
		return "Rate limit exceeded"
	case ErrorTypeServer:
		return "Server error"
	case ErrorTypeValidation:
		return "The request was rejected"
	}
	return "Something went wrong"
}

// FormatError returns a user-friendly error message
func FormatError(err error) string {
	if err == nil {
		return ""
	}

	cliErr := CategorizeError(err)
	var sb strings.Builder

	sb.WriteString("Error")
	if cliErr.Type != ErrorTypeUnknown {
		sb.WriteString(" (")
		sb.WriteString(string(cliErr.Type))
		sb.WriteString(")")
	}
	sb.WriteString(": ")
	sb.WriteString(cliErr.Message)
	sb.WriteString("\n")

	if cliErr.HasSuggestion() {
		sb.WriteString("Suggestion: ")
		sb.WriteString(cliErr.Suggestion)
		sb.WriteString("\n")
	}

	return sb.String()
}
