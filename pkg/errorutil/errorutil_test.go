package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewInvalidArgument(t *testing.T) {
	err := NewInvalidArgument("Score must be between 0 and 100", map[string]any{"score": 150})

	var domainErr *DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, CodeInvalidArgument, domainErr.Code)
	assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	assert.Equal(t, "Score must be between 0 and 100", domainErr.Message)
	assert.Equal(t, 150, domainErr.Details["score"])
}

func TestIsInvalidArgument(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"plain error", errors.New("boom"), false},
		{"invalid argument", NewInvalidArgument("bad input", nil), true},
		{"wrapped invalid argument", fmt.Errorf("create user: %w", NewInvalidArgument("bad input", nil)), true},
		{"internal error", NewInternalError(errors.New("boom")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInvalidArgument(tt.err))
		})
	}
}

func TestDomainErrorError(t *testing.T) {
	bare := &DomainError{Message: "bad input"}
	assert.Equal(t, "bad input", bare.Error())

	wrapped := &DomainError{Message: "internal server error", Err: errors.New("boom")}
	assert.Equal(t, "internal server error: boom", wrapped.Error())
	assert.Equal(t, "boom", wrapped.Unwrap().Error())
}

func TestToDomainError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	domain := NewInvalidArgument("bad input", nil)
	assert.Same(t, domain, ToDomainError(fmt.Errorf("wrapped: %w", domain)))

	mapped := ToDomainError(errors.New("boom"))
	require.NotNil(t, mapped)
	assert.Equal(t, CodeInternalError, mapped.Code)
	assert.Equal(t, http.StatusInternalServerError, mapped.HTTPStatus)
}
