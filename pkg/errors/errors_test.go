package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

// TestNewCLIError creates and validates a CLI error
func TestNewCLIError(t *testing.T) {
	cause := errors.New("underlying error")
	err := NewCLIError(ErrorTypeValidation, "Test error", cause)

	if err.Type != ErrorTypeValidation {
		t.Errorf("Expected type %s, got %s", ErrorTypeValidation, err.Type)
	}
	if err.Message != "Test error" {
		t.Errorf("Expected message 'Test error', got '%s'", err.Message)
	}
	if err.Unwrap() != cause {
		t.Error("Cause not set correctly")
	}
	if err.Error() != "Test error" {
		t.Errorf("Error() returned '%s'", err.Error())
	}
}

// TestWithSuggestion adds suggestion to error
func TestWithSuggestion(t *testing.T) {
	err := NewCLIError(ErrorTypeValidation, "Test", nil).WithSuggestion("Try something else")

	if !err.HasSuggestion() {
		t.Error("HasSuggestion returned false")
	}
	if err.Suggestion != "Try something else" {
		t.Errorf("Unexpected suggestion '%s'", err.Suggestion)
	}
}

// TestNotice validates the user-facing notice hides backend text
func TestNotice(t *testing.T) {
	testCases := []struct {
		name     string
		input    error
		expected ErrorType
	}{
		{"no rows", remote.NoRows("ideas"), ErrorTypeNotFound},
		{"conflict", &remote.Error{Code: remote.CodeUniqueViol, Message: "duplicate key value violates unique constraint \"idx_favorite_user_idea\"", Status: 409}, ErrorTypeConflict},
		{"bad grant", &remote.Error{Code: remote.CodeInvalidGrant, Message: "Invalid login credentials", Status: 400}, ErrorTypeAuth},
		{"not signed in", remote.ErrNotAuthenticated, ErrorTypeUnauthorized},
		{"server", &remote.Error{Code: "XX000", Message: "relation pg_catalog blew up", Status: 500}, ErrorTypeServer},
		{"rate limit", &remote.Error{Message: "slow down", Status: 429}, ErrorTypeRateLimit},
		{"rejected", &remote.Error{Code: "23514", Message: "new row violates check constraint", Status: 400}, ErrorTypeValidation},
		{"deadline", fmt.Errorf("rate idea: %w", context.DeadlineExceeded), ErrorTypeTimeout},
		{"opaque", errors.New("boom"), ErrorTypeUnknown},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			notice := Notice("update rating", tc.input)

			if notice.Message != "Failed to update rating" {
				t.Errorf("Unexpected message '%s'", notice.Message)
			}
			if notice.Type != tc.expected {
				t.Errorf("Expected type %s, got %s", tc.expected, notice.Type)
			}
			if !errors.Is(notice, tc.input) {
				t.Error("Notice should wrap the original error")
			}
			if strings.Contains(FormatError(notice), "constraint") || strings.Contains(FormatError(notice), "pg_catalog") {
				t.Error("Backend text leaked into the formatted notice")
			}
		})
	}
}

// TestNoticeKeepsValidationErrors validates local validation wording survives
func TestNoticeKeepsValidationErrors(t *testing.T) {
	v := ValidationError("rating", "must be between 1 and 5")
	notice := Notice("update rating", v)

	if notice != v {
		t.Error("Validation errors should pass through unchanged")
	}
	if Notice("anything", nil) != nil {
		t.Error("Notice of nil should be nil")
	}
}

// TestCategorizeError categorizes standard errors
func TestCategorizeError(t *testing.T) {
	testCases := []struct {
		input    error
		expected ErrorType
		name     string
	}{
		{errors.New("dial tcp: connection refused"), ErrorTypeNetwork, "connection refused"},
		{errors.New("i/o timeout"), ErrorTypeTimeout, "timeout text"},
		{context.DeadlineExceeded, ErrorTypeTimeout, "context deadline"},
		{&remote.Error{Code: "bad_jwt", Status: 401}, ErrorTypeAuth, "401 error"},
		{remote.NoRows("profiles"), ErrorTypeNotFound, "no rows"},
		{&remote.Error{Status: 429}, ErrorTypeRateLimit, "429 error"},
		{&remote.Error{Status: 503}, ErrorTypeServer, "503 error"},
		{errors.New("something odd"), ErrorTypeUnknown, "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := CategorizeError(tc.input)

			if err.Type != tc.expected {
				t.Errorf("Expected type %s, got %s", tc.expected, err.Type)
			}
		})
	}

	existing := NotFoundError("Idea", "abc")
	if CategorizeError(existing) != existing {
		t.Error("CLIError should be returned as is")
	}
	if CategorizeError(nil) != nil {
		t.Error("nil should categorize to nil")
	}
}

// TestFormatError formats error for display
func TestFormatError(t *testing.T) {
	formatted := FormatError(AuthError("Invalid credentials"))

	if !strings.Contains(formatted, "Error (auth): Invalid credentials") {
		t.Errorf("Unexpected formatted message %q", formatted)
	}
	if !strings.Contains(formatted, "Suggestion: Try logging in again") {
		t.Errorf("Expected suggestion in %q", formatted)
	}
}

// TestFormatError_NoSuggestion formats error without suggestion
func TestFormatError_NoSuggestion(t *testing.T) {
	formatted := FormatError(NewCLIError(ErrorTypeUnknown, "Some error", nil))

	if formatted != "Error: Some error\n" {
		t.Errorf("Unexpected formatted message %q", formatted)
	}
}

// TestFormatError_Nil handles nil error
func TestFormatError_Nil(t *testing.T) {
	if formatted := FormatError(nil); formatted != "" {
		t.Errorf("Expected empty string for nil error, got '%s'", formatted)
	}
}
