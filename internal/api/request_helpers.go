package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/service"
)

// getStudentIDFromContext extracts the authenticated student's UUID from
// the request context. The ID is placed there by the auth middleware.
func getStudentIDFromContext(r *http.Request) (uuid.UUID, bool) {
	studentID, ok := r.Context().Value(shared.StudentIDContextKey).(uuid.UUID)
	if !ok || studentID == uuid.Nil {
		return uuid.Nil, false
	}
	return studentID, true
}

// getPathUUID extracts and parses a UUID path parameter.
func getPathUUID(r *http.Request, paramName string) (uuid.UUID, error) {
	pathParam := chi.URLParam(r, paramName)
	if pathParam == "" {
		return uuid.Nil, fmt.Errorf("%w: %s is required", service.ErrInvalidInput, paramName)
	}

	id, err := uuid.Parse(pathParam)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s has invalid format", service.ErrInvalidInput, paramName)
	}

	return id, nil
}

// requireStudentID extracts the authenticated student ID, writing a 401 and
// returning false when it is missing. Routes behind the auth middleware
// should never hit the failure path; the check guards against misordered
// middleware.
func requireStudentID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	studentID, ok := getStudentIDFromContext(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authentication required")
		return uuid.Nil, false
	}
	return studentID, true
}
