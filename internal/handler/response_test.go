package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/media-catalog/internal/apperror"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
		wantMsg    string
	}{
		{"validation", apperror.ValidationFailed("name", "Name must have a value"), http.StatusBadRequest, "validation_error", "Name must have a value"},
		{"unauthorized", apperror.Unauthorized("Invalid Credentials"), http.StatusUnauthorized, "unauthorized", "Invalid Credentials"},
		{"not found", apperror.New(apperror.ErrNotFound, "The %s could not be found.", "album"), http.StatusNotFound, "not_found", "The album could not be found."},
		{"conflict", apperror.Conflict("name", "Username already taken"), http.StatusConflict, "conflict", "Username already taken"},
		{"internal", apperror.Internal("Error: boom"), http.StatusInternalServerError, "internal_error", "Error: boom"},
		{"plain error", errors.New("driver exploded"), http.StatusInternalServerError, "internal_error", "Unexpected error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantType, body.Error)
			assert.Equal(t, tt.wantMsg, body.Message)
		})
	}
}

func TestWriteJSON_NilBody(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusOK, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
