package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode(t *testing.T) {
	err := New(CodeBadRequest, "course id is required")
	assert.True(t, HasCode(err, CodeBadRequest))
	assert.False(t, HasCode(err, CodeInternal))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.True(t, HasCode(wrapped, CodeBadRequest))

	assert.False(t, HasCode(errors.New("plain"), CodeBadRequest))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Wrap(cause, CodeInternal, "failed to record payment").WithDetails("payments")

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "payments", DetailsOf(err))
	assert.Equal(t, "failed to record payment", MessageOf(err))
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessageOfNeverLeaksPlainErrors(t *testing.T) {
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: relation does not exist")))
}

func TestToHTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeBadRequest, http.StatusBadRequest},
		{CodeUnauthorized, http.StatusUnauthorized},
		{CodeNotFound, http.StatusNotFound},
		{CodeConflict, http.StatusConflict},
		{CodeUpstream, http.StatusBadGateway},
		{CodeInvariantViolation, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToHTTPStatus(tt.code), string(tt.code))
	}
}
