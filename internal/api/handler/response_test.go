package handler

import (
	"credit-engine/internal/api/handler/dto"
	"credit-engine/internal/pkg/apperrors"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondError(t *testing.T) {
	dbFailure := apperrors.WrapDatabaseError(errors.New("connection reset"), "failed to get loan by ID")

	tests := []struct {
		name   string
		err    error
		status int
		detail dto.ErrorDetail
	}{
		{
			name:   "not found",
			err:    fmt.Errorf("%w: loan 9", apperrors.ErrNotFound),
			status: http.StatusNotFound,
			detail: dto.ErrorDetail{Code: "NOT_FOUND", Message: "Resource not found."},
		},
		{
			name:   "field validation",
			err:    apperrors.NewValidationError("tenure", "must be at least 1 month"),
			status: http.StatusBadRequest,
			detail: dto.ErrorDetail{Code: "VALIDATION_ERROR", Message: "must be at least 1 month", Field: "tenure"},
		},
		{
			name:   "conflict",
			err:    fmt.Errorf("%w: phone number taken", apperrors.ErrConflict),
			status: http.StatusConflict,
			detail: dto.ErrorDetail{Code: "CONFLICT", Message: "Resource already exists."},
		},
		{
			name:   "database failure behind service error",
			err:    fmt.Errorf("%w: failed to load loan 9: %w", apperrors.ErrInternalServer, dbFailure),
			status: http.StatusInternalServerError,
			detail: dto.ErrorDetail{Code: "DB_ERROR", Message: "An unexpected error occurred."},
		},
		{
			name:   "plain internal error",
			err:    errors.New("boom"),
			status: http.StatusInternalServerError,
			detail: dto.ErrorDetail{Code: "INTERNAL_ERROR", Message: "An unexpected error occurred."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()

			respondError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			var resp dto.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.detail, resp.Error)
		})
	}
}
