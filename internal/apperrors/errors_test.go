package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err    error
		status int
	}{
		{NotFound("campaign %s not found", "abc"), http.StatusNotFound},
		{Validation("quantity must be positive"), http.StatusBadRequest},
		{Conflict("email already registered"), http.StatusConflict},
		{Forbidden("not your donation"), http.StatusForbidden},
		{Internal("boom", errors.New("db down")), http.StatusInternalServerError},
		{errors.New("plain error"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.status, HTTPStatus(tc.err), "error: %v", tc.err)
	}
}

func TestKindOfUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("loading donation: %w", NotFound("donation gone"))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrorMessageFormatting(t *testing.T) {
	err := NotFound("donation %s not found", "d-1")
	assert.Equal(t, "donation d-1 not found", err.Error())

	wrapped := Internal("failed to list donations", errors.New("conn refused"))
	assert.Equal(t, "failed to list donations: conn refused", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "conn refused")
}
