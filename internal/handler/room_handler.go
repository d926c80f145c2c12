package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"

	"github.com/campustrack/campustrack-backend/internal/middleware"
	"github.com/campustrack/campustrack-backend/internal/model"
	"github.com/campustrack/campustrack-backend/internal/repository"
	"github.com/campustrack/campustrack-backend/internal/response"
	"github.com/campustrack/campustrack-backend/internal/service"
	"github.com/campustrack/campustrack-backend/internal/validator"
)

// RoomHandler handles the room registry and vacancy endpoints.
type RoomHandler struct {
	occupancyService *service.OccupancyService
	roomRepo         *repository.RoomRepository
}

// NewRoomHandler creates a new RoomHandler.
func NewRoomHandler(occupancyService *service.OccupancyService, roomRepo *repository.RoomRepository) *RoomHandler {
	return &RoomHandler{
		occupancyService: occupancyService,
		roomRepo:         roomRepo,
	}
}

// ListRooms godoc
// GET /api/v1/rooms
// Lists all registered rooms with their derived current vacancy.
func (h *RoomHandler) ListRooms(c *gin.Context) {
	rooms, err := h.occupancyService.ListRoomsWithVacancy(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"rooms": rooms})
}

// GetRoomVacancy godoc
// GET /api/v1/rooms/:name/vacancy
// Returns the room's derived vacancy at the current instant.
func (h *RoomHandler) GetRoomVacancy(c *gin.Context) {
	name := model.NormalizeRoomName(c.Param("name"))

	vacant, err := h.occupancyService.IsRoomCurrentlyVacant(c.Request.Context(), name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"name": name, "vacant": vacant})
}

// CreateRoomRequest is the payload for registering a room.
type CreateRoomRequest struct {
	Name string `json:"name" binding:"required,min=1,max=60,excludes=/"`
}

// CreateRoom godoc
// POST /api/v1/rooms
// Registers a room under its normalized name. Idempotent.
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	var req CreateRoomRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	name := model.NormalizeRoomName(req.Name)
	if err := h.roomRepo.Create(c.Request.Context(), name); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"name": name})
}

// UpdateRoomStatus godoc
// POST /api/v1/rooms/status
// Toggles the vacancy exception for one exact slot across every room a
// (possibly combined) name resolves to. Unregistered components are reported
// in the response without blocking the rest.
func (h *RoomHandler) UpdateRoomStatus(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	var req model.UpdateRoomStatusRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.occupancyService.UpdateRoomStatus(
		c.Request.Context(), req.Room, *req.Vacant, claims.UID, req.Slot)
	if err != nil {
		if !failDomainError(c, err) {
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, gin.H{"result": result})
}
