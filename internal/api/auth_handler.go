package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/nexuslearn/nexus-api/internal/api/shared"
	"github.com/nexuslearn/nexus-api/internal/domain"
	"github.com/nexuslearn/nexus-api/internal/service/auth"
	"github.com/nexuslearn/nexus-api/internal/store"
)

// AuthHandler handles authentication-related API requests.
type AuthHandler struct {
	students         store.StudentRegistry
	jwtService       auth.JWTService
	passwordVerifier auth.PasswordVerifier
	validator        *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	students store.StudentRegistry,
	jwtService auth.JWTService,
	passwordVerifier auth.PasswordVerifier,
) *AuthHandler {
	return &AuthHandler{
		students:         students,
		jwtService:       jwtService,
		passwordVerifier: passwordVerifier,
		validator:        validator.New(),
	}
}

// Register handles the /auth/register endpoint.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	student, err := domain.NewStudent(req.Email, req.DisplayName, req.Password, req.GradeLevel, req.DomainFocus)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid student data: "+err.Error())
		return
	}

	if err := h.students.Create(r.Context(), student); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			shared.RespondWithError(w, r, http.StatusConflict, "Email already exists")
			return
		}
		slog.Error("failed to create student", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to create student")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), student.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "student_id", student.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, AuthResponse{
		StudentID: student.ID,
		Token:     token,
	})
}

// Login handles the /auth/login endpoint.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest

	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	student, err := h.students.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, store.ErrStudentNotFound) {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
			return
		}
		slog.Error("failed to get student by email", "error", err)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to authenticate student")
		return
	}

	if err := h.passwordVerifier.Compare(student.HashedPassword, req.Password); err != nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	token, err := h.jwtService.GenerateToken(r.Context(), student.ID)
	if err != nil {
		slog.Error("failed to generate token", "error", err, "student_id", student.ID)
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Failed to generate authentication token")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, AuthResponse{
		StudentID: student.ID,
		Token:     token,
	})
}
