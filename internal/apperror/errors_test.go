package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"dataroom-server/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestSentinelsAndStatusCodes(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		status   int
	}{
		{"not found", apperror.NotFound("документ %s", "x"), apperror.ErrNotFound, http.StatusNotFound},
		{"forbidden", apperror.Forbidden("нет"), apperror.ErrForbidden, http.StatusForbidden},
		{"conflict", apperror.Conflict("дубль"), apperror.ErrConflict, http.StatusConflict},
		{"validation", apperror.Validation("плохо"), apperror.ErrValidation, http.StatusUnprocessableEntity},
		{"unauthorized", apperror.Unauthorized("кто вы"), apperror.ErrUnauthorized, http.StatusUnauthorized},
		{"unavailable", apperror.Unavailable("бд", errors.New("timeout")), apperror.ErrUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("[Test] %w", tt.err)
			assert.ErrorIs(t, wrapped, tt.sentinel)
			assert.Equal(t, tt.status, apperror.StatusCode(wrapped))
		})
	}
}

func TestUnavailable_KeepsDomainErrors(t *testing.T) {
	notFound := apperror.NotFound("нет такого")

	assert.Same(t, notFound, apperror.Unavailable("бд", notFound))
	assert.Nil(t, apperror.Unavailable("бд", nil))

	cause := errors.New("connection refused")
	err := apperror.Unavailable("бд", cause)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestStatusCode_Unknown(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, apperror.StatusCode(errors.New("boom")))
}
