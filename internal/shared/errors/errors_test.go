package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorMessage(t *testing.T) {
	err := NewValidationError("user ID is required")
	assert.Equal(t, "validation_error: user ID is required", err.Error())

	withDetails := NewValidationError("invalid session input", "ttl must be positive")
	assert.Equal(t, "validation_error: invalid session input (ttl must be positive)", withDetails.Error())
}

func TestConstructorsSetTypeAndCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		wantType ErrorType
		wantCode int
	}{
		{"validation", NewValidationError("bad input"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("session not found"), ErrorTypeNotFound, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantCode, tt.err.Code)
		})
	}
}

func TestPredicatesUnwrap(t *testing.T) {
	wrapped := fmt.Errorf("lookup failed: %w", NewNotFoundError("session not found"))

	assert.True(t, IsAppError(wrapped))
	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsValidationError(wrapped))

	got := GetAppError(wrapped)
	assert.NotNil(t, got)
	assert.Equal(t, ErrorTypeNotFound, got.Type)

	plain := fmt.Errorf("plain failure")
	assert.False(t, IsAppError(plain))
	assert.Nil(t, GetAppError(plain))
}
