package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campustrack/campustrack-backend/internal/middleware"
	"github.com/campustrack/campustrack-backend/internal/model"
	"github.com/campustrack/campustrack-backend/internal/response"
	"github.com/campustrack/campustrack-backend/internal/service"
	"github.com/campustrack/campustrack-backend/internal/validator"
)

// ScheduleHandler handles student schedule entries and professor claims.
type ScheduleHandler struct {
	matchingService *service.MatchingService
	queryService    *service.ScheduleQueryService
}

// NewScheduleHandler creates a new ScheduleHandler.
func NewScheduleHandler(matchingService *service.MatchingService, queryService *service.ScheduleQueryService) *ScheduleHandler {
	return &ScheduleHandler{
		matchingService: matchingService,
		queryService:    queryService,
	}
}

// SubmitEntry godoc
// POST /api/v1/student/schedule/entries
// Records the student's attestation for a schedule code and returns the
// recomputed class slot.
func (h *ScheduleHandler) SubmitEntry(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.SubmitEntryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	entry := &model.ScheduleEntry{
		StudentUID:   claims.UID,
		ScheduleCode: req.ScheduleCode,
		Subject:      req.Subject,
		Day:          req.Day,
		StartTime:    req.StartTime,
		EndTime:      req.EndTime,
		Room:         req.Room,
		Section:      req.Section,
	}

	slot, err := h.matchingService.SubmitEntry(c.Request.Context(), entry)
	if err != nil {
		if !failDomainError(c, err) {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"entry": entry, "slot": slot})
}

// WithdrawEntry godoc
// DELETE /api/v1/student/schedule/entries/:code
// Removes the student's attestation for a schedule code.
func (h *ScheduleHandler) WithdrawEntry(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	slot, err := h.matchingService.WithdrawEntry(c.Request.Context(), claims.UID, c.Param("code"))
	if err != nil {
		if !failDomainError(c, err) {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

// ListMyEntries godoc
// GET /api/v1/student/schedule/entries
// Lists the authenticated student's submitted entries.
func (h *ScheduleHandler) ListMyEntries(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	entries, err := h.matchingService.ListStudentEntries(c.Request.Context(), claims.UID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"entries": entries})
}

// ClaimCode godoc
// POST /api/v1/professor/claims
// Claims a schedule code for the authenticated professor.
func (h *ScheduleHandler) ClaimCode(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.ClaimRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	slot, err := h.matchingService.ClaimCode(c.Request.Context(), req.ScheduleCode, claims.ProfessorInfo())
	if err != nil {
		if !failDomainError(c, err) {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

// UnclaimCode godoc
// DELETE /api/v1/professor/claims/:code
// Releases the authenticated professor's claim on a schedule code.
func (h *ScheduleHandler) UnclaimCode(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	slot, err := h.matchingService.UnclaimCode(c.Request.Context(), c.Param("code"), claims.UID)
	if err != nil {
		if !failDomainError(c, err) {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"slot": slot})
}

// GetFacultySchedule godoc
// GET /api/v1/professor/schedule
// Returns the authenticated professor's validated schedule with statistics.
func (h *ScheduleHandler) GetFacultySchedule(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	schedule, err := h.queryService.GetFacultySchedule(c.Request.Context(), claims.UID)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"schedule": schedule})
}
