package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campustrack/campustrack-backend/internal/middleware"
	"github.com/campustrack/campustrack-backend/internal/model"
	"github.com/campustrack/campustrack-backend/internal/repository"
	"github.com/campustrack/campustrack-backend/internal/response"
	"github.com/campustrack/campustrack-backend/internal/service"
	"github.com/campustrack/campustrack-backend/internal/validator"
)

// AuthHandler handles authentication endpoints.
type AuthHandler struct {
	authService   *service.AuthService
	professorRepo *repository.ProfessorRepository
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *service.AuthService, professorRepo *repository.ProfessorRepository) *AuthHandler {
	return &AuthHandler{
		authService:   authService,
		professorRepo: professorRepo,
	}
}

// ProfessorLogin godoc
// POST /api/v1/auth/professor/login
// Validates email + password and returns a professor JWT.
func (h *AuthHandler) ProfessorLogin(c *gin.Context) {
	var req model.ProfessorLoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	professor, err := h.professorRepo.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		// Same response for unknown email and wrong password.
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
		return
	}

	if err := h.authService.CheckPassword(professor.PasswordHash, req.Password); err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	token, err := h.authService.GenerateProfessorToken(professor)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, model.ProfessorLoginResponse{
		Token:     token,
		Professor: *professor,
	})
}

// GetProfessorProfile godoc
// GET /api/v1/auth/professor/me
// Returns the profile of the currently authenticated professor.
func (h *AuthHandler) GetProfessorProfile(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	professor, err := h.professorRepo.GetByUID(c.Request.Context(), claims.UID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"professor": professor})
}
