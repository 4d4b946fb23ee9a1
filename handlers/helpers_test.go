package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/esports-arena/services"
	"github.com/Dosada05/esports-arena/workflow"
)

func TestMapServiceErrorToHTTP(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"name": "must be provided"}}, http.StatusUnprocessableEntity},
		{"not found wrapped", fmt.Errorf("get: %w", services.ErrTournamentNotFound), http.StatusNotFound},
		{"registration conflict", services.ErrRegistrationConflict, http.StatusConflict},
		{"tournament full", workflow.ErrTournamentFull, http.StatusConflict},
		{"nothing to update", services.ErrNothingToUpdate, http.StatusBadRequest},
		{"timer not configured", services.ErrTimerNotConfigured, http.StatusBadRequest},
		{"profile required", workflow.ErrProfileRequired, http.StatusUnprocessableEntity},
		{"login required", workflow.ErrLoginRequired, http.StatusUnauthorized},
		{"forbidden", services.ErrForbiddenOperation, http.StatusForbidden},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			mapServiceErrorToHTTP(rec, req, tt.err)
			assert.Equal(t, tt.want, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		})
	}
}

func TestServerErrorHidesDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mapServiceErrorToHTTP(rec, req, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "password")
}

func TestReadJSON(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"ok", `{"name":"cup"}`, ""},
		{"empty", ``, "must not be empty"},
		{"unknown field", `{"nope":1}`, "unknown key"},
		{"two values", `{"name":"a"}{"name":"b"}`, "single JSON value"},
		{"bad type", `{"name":1}`, "incorrect JSON type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			err := readJSON(rec, req, &dst)
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "cup", dst.Name)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestFailedValidationBody(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	failedValidationResponse(rec, req, map[string]string{"player_game_id": "must be provided"})

	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "must be provided", body["error"]["player_game_id"])
}
