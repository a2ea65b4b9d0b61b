package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/SscSPs/lecturer_claims_app/internal/apperrors"
)

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: hours", apperrors.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: too big", apperrors.ErrFileRejected), http.StatusUnprocessableEntity},
		{apperrors.ErrUnauthorized, http.StatusUnauthorized},
		{apperrors.ErrUnauthorizedPrincipal, http.StatusForbidden},
		{apperrors.ErrNotFound, http.StatusNotFound},
		{apperrors.ErrDuplicateSubmission, http.StatusConflict},
		{apperrors.ErrDuplicate, http.StatusConflict},
		{apperrors.ErrInvalidStateTransition, http.StatusConflict},
		{apperrors.NewAppError(http.StatusServiceUnavailable, "storage down", nil), http.StatusServiceUnavailable},
		{errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}
