package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexuslearn/nexus-api/internal/mocks"
)

func postJSON(t *testing.T, handler http.HandlerFunc, target string, payload map[string]interface{}) *httptest.ResponseRecorder {
	t.Helper()

	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, target, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	handler(recorder, req)
	return recorder
}

func TestRegister(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		payload    map[string]interface{}
		wantStatus int
		wantToken  bool
	}{
		{
			name: "valid registration",
			payload: map[string]interface{}{
				"email":        "ada@example.com",
				"password":     "correct-horse-battery",
				"display_name": "Ada",
				"grade_level":  4,
				"domain_focus": "math",
			},
			wantStatus: http.StatusCreated,
			wantToken:  true,
		},
		{
			name: "invalid email",
			payload: map[string]interface{}{
				"email":        "not-an-email",
				"password":     "correct-horse-battery",
				"display_name": "Ada",
				"grade_level":  4,
				"domain_focus": "math",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "password too short",
			payload: map[string]interface{}{
				"email":        "ada@example.com",
				"password":     "short",
				"display_name": "Ada",
				"grade_level":  4,
				"domain_focus": "math",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "missing display name",
			payload: map[string]interface{}{
				"email":        "ada@example.com",
				"password":     "correct-horse-battery",
				"grade_level":  4,
				"domain_focus": "math",
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "grade level out of range",
			payload: map[string]interface{}{
				"email":        "ada@example.com",
				"password":     "correct-horse-battery",
				"display_name": "Ada",
				"grade_level":  13,
				"domain_focus": "math",
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			registry := mocks.NewMockStudentRegistry()
			jwtService := &mocks.MockJWTService{Token: "test-token"}
			verifier := &mocks.MockPasswordVerifier{ShouldSucceed: true}
			handler := NewAuthHandler(registry, jwtService, verifier)

			recorder := postJSON(t, handler.Register, "/auth/register", tt.payload)
			assert.Equal(t, tt.wantStatus, recorder.Code)

			if tt.wantToken {
				var resp AuthResponse
				require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
				assert.NotEqual(t, uuid.Nil, resp.StudentID)
				assert.Equal(t, "test-token", resp.Token)
			}
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	registry := mocks.NewMockStudentRegistry()
	handler := NewAuthHandler(registry, &mocks.MockJWTService{Token: "t"}, &mocks.MockPasswordVerifier{ShouldSucceed: true})

	payload := map[string]interface{}{
		"email":        "ada@example.com",
		"password":     "correct-horse-battery",
		"display_name": "Ada",
		"grade_level":  4,
		"domain_focus": "math",
	}

	first := postJSON(t, handler.Register, "/auth/register", payload)
	require.Equal(t, http.StatusCreated, first.Code)

	second := postJSON(t, handler.Register, "/auth/register", payload)
	assert.Equal(t, http.StatusConflict, second.Code)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	const email = "ada@example.com"
	const password = "correct-horse-battery"

	setup := func(t *testing.T, verifierSucceeds bool) *AuthHandler {
		t.Helper()

		registry := mocks.NewMockStudentRegistry()
		handler := NewAuthHandler(
			registry,
			&mocks.MockJWTService{Token: "test-token"},
			&mocks.MockPasswordVerifier{ShouldSucceed: verifierSucceeds},
		)
		seed := postJSON(t, handler.Register, "/auth/register", map[string]interface{}{
			"email":        email,
			"password":     password,
			"display_name": "Ada",
			"grade_level":  4,
			"domain_focus": "math",
		})
		require.Equal(t, http.StatusCreated, seed.Code)
		return handler
	}

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()

		handler := setup(t, true)
		recorder := postJSON(t, handler.Login, "/auth/login", map[string]interface{}{
			"email":    email,
			"password": password,
		})
		assert.Equal(t, http.StatusOK, recorder.Code)

		var resp AuthResponse
		require.NoError(t, json.NewDecoder(recorder.Body).Decode(&resp))
		assert.Equal(t, "test-token", resp.Token)
		assert.NotEqual(t, uuid.Nil, resp.StudentID)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()

		handler := setup(t, true)
		recorder := postJSON(t, handler.Login, "/auth/login", map[string]interface{}{
			"email":    "nobody@example.com",
			"password": password,
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()

		handler := setup(t, false)
		recorder := postJSON(t, handler.Login, "/auth/login", map[string]interface{}{
			"email":    email,
			"password": "wrong-password-entirely",
		})
		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}
