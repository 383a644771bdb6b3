package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/service"
	"github.com/nexuslearn/nexus-api/internal/service/auth"
	"github.com/nexuslearn/nexus-api/internal/store"
)

func TestMapErrorToStatusCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid token", auth.ErrInvalidToken, http.StatusUnauthorized},
		{"expired token", auth.ErrExpiredToken, http.StatusUnauthorized},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{"email exists", store.ErrEmailExists, http.StatusConflict},
		{"student not found", service.ErrStudentNotFound, http.StatusNotFound},
		{"node not found", service.ErrNodeNotFound, http.StatusNotFound},
		{"store not found", store.ErrNotFound, http.StatusNotFound},
		{"branch not available", service.ErrBranchNotAvailable, http.StatusBadRequest},
		{"branch already chosen", service.ErrBranchAlreadyChosen, http.StatusConflict},
		{"concurrent modification", service.ErrConcurrentModification, http.StatusConflict},
		{"invalid input", service.ErrInvalidInput, http.StatusBadRequest},
		{"invalid forecast", service.ErrInvalidForecast, http.StatusBadRequest},
		{"invariant violation", service.ErrInvariantViolation, http.StatusInternalServerError},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
		{
			"wrapped sentinel",
			fmt.Errorf("outer: %w", service.ErrNodeNotFound),
			http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, MapErrorToStatusCode(tt.err))
		})
	}
}

func TestGetSafeErrorMessageNeverLeaksInternals(t *testing.T) {
	t.Parallel()

	internal := errors.New("pq: connection refused on 10.0.0.7:5432")
	msg := GetSafeErrorMessage(internal)
	assert.NotContains(t, msg, "10.0.0.7")
	assert.NotContains(t, msg, "pq:")
}

func TestHandleAPIError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		err         error
		defaultMsg  string
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "mapped sentinel uses safe message",
			err:         service.ErrStudentNotFound,
			wantStatus:  http.StatusNotFound,
			wantMessage: "Student not found",
		},
		{
			name:        "mapped sentinel keeps safe message over fallback",
			err:         service.ErrNodeNotFound,
			defaultMsg:  "Failed to record interaction",
			wantStatus:  http.StatusNotFound,
			wantMessage: "Knowledge node not found",
		},
		{
			name:        "mapped conflict keeps safe message over fallback",
			err:         service.ErrBranchAlreadyChosen,
			defaultMsg:  "Failed to choose branch",
			wantStatus:  http.StatusConflict,
			wantMessage: "A conflicting branch has already been chosen",
		},
		{
			name:        "unmapped error uses fallback",
			err:         errors.New("sql: no rows"),
			defaultMsg:  "Failed to record interaction",
			wantStatus:  http.StatusInternalServerError,
			wantMessage: "Failed to record interaction",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			recorder := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/test", nil)
			HandleAPIError(recorder, req, tt.err, tt.defaultMsg)

			assert.Equal(t, tt.wantStatus, recorder.Code)

			var resp shared.ErrorResponse
			require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
			assert.Equal(t, tt.wantMessage, resp.Error)
		})
	}
}
