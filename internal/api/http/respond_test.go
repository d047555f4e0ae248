package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Prosparity-git/collection/internal/domain"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"NotFound", domain.NotFoundf("payment record 42 not found"), http.StatusNotFound, "not_found"},
		{"Validation", domain.Validationf("actor is required"), http.StatusBadRequest, "validation_error"},
		{"InvalidTransition", domain.InvalidTransitionf("amount too low"), http.StatusUnprocessableEntity, "invalid_transition"},
		{"Conflict", domain.Conflictf("key already used"), http.StatusConflict, "conflict"},
		{"Storage", domain.StorageErr("load payment", errors.New("boom")), http.StatusInternalServerError, "storage_error"},
		{"Unclassified", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body errorBody
			assert.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantError, body.Error)
		})
	}
}

func TestWriteError_StorageMessageIsOpaque(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, domain.StorageErr("load payment", errors.New("password=hunter2 connection refused")))

	assert.NotContains(t, rec.Body.String(), "hunter2")
	assert.Contains(t, rec.Body.String(), "internal server error")
}
