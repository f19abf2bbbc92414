package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/0xAcousticbridge/GAID/pkg/errors"
	"github.com/0xAcousticbridge/GAID/pkg/remote"
)

func TestFromError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		code    ErrorCode
		status  int
		message string
	}{
		{
			name:    "validation notice",
			err:     apperrors.ValidationError("title", "is required"),
			code:    ErrValidation,
			status:  http.StatusUnprocessableEntity,
			message: "Validation error: title - is required",
		},
		{
			name:    "not signed in",
			err:     apperrors.NotSignedInError(),
			code:    ErrUnauthorized,
			status:  http.StatusUnauthorized,
			message: "You need to be signed in",
		},
		{
			name:    "conflict notice",
			err:     apperrors.Notice("update favorite", &remote.Error{Code: remote.CodeUniqueViol, Message: "duplicate key", Status: 409}),
			code:    ErrConflict,
			status:  http.StatusConflict,
			message: "Failed to update favorite",
		},
		{
			name:    "server notice",
			err:     apperrors.Notice("share idea", &remote.Error{Message: "relation ideas is on fire", Status: 500}),
			code:    ErrInternalError,
			status:  http.StatusInternalServerError,
			message: "Failed to share idea",
		},
		{
			name:    "wrapped api error",
			err:     fmt.Errorf("handler: %w", BadRequest("bad json")),
			code:    ErrBadRequest,
			status:  http.StatusBadRequest,
			message: "bad json",
		},
		{
			name:    "unknown error",
			err:     fmt.Errorf("something odd"),
			code:    ErrInternalError,
			status:  http.StatusInternalServerError,
			message: "internal server error",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err)
			assert.Equal(t, tc.code, got.Code)
			assert.Equal(t, tc.status, got.Status)
			assert.Equal(t, tc.message, got.Message)
			assert.NotContains(t, got.Message, "on fire")
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, ErrAuthFailed.StatusCode())
	assert.Equal(t, http.StatusInternalServerError, ErrorCode("NOPE").StatusCode())
}
