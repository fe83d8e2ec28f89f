package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: NewValidationError("name is required", "name"), want: http.StatusBadRequest},
		{name: "not found", err: ErrUserNotFound, want: http.StatusNotFound},
		{name: "wrapped not found", err: fmt.Errorf("get user 7: %w", ErrUserNotFound), want: http.StatusNotFound},
		{name: "internal", err: NewInternalError("boom", nil), want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("connection reset"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestValidationError_Message(t *testing.T) {
	err := NewValidationError("name is required, email is required", "name", "email")
	assert.Equal(t, "name is required, email is required", err.Error())
	assert.Equal(t, []string{"name", "email"}, err.Fields)
	assert.True(t, IsValidation(fmt.Errorf("create: %w", err)))
}

func TestNotFoundError_DefaultMessage(t *testing.T) {
	err := NewNotFoundError("user", "")
	assert.Equal(t, "user not found", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(errors.New("user not found")))
}

func TestInternalError_Unwrap(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := NewInternalError("failed to list users", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to list users: dial tcp: refused", err.Error())
}
