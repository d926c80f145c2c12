package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/campustrack/campustrack-backend/internal/apperr"
	"github.com/campustrack/campustrack-backend/internal/response"
)

// failDomainError maps a typed domain error onto the response envelope with
// its actionable message. Returns false if err is not a domain error, in
// which case the caller falls through to a generic failure.
func failDomainError(c *gin.Context, err error) bool {
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		response.FailWithMessage(c, http.StatusBadRequest, response.ErrValidation, ve.Error())
		return true
	}

	var nfe *apperr.NotFoundError
	if errors.As(err, &nfe) {
		code := response.ErrNotFound
		if nfe.Resource == "schedule code" {
			code = response.ErrCodeNotReported
		}
		response.FailWithMessage(c, http.StatusNotFound, code, nfe.Error())
		return true
	}

	var pe *apperr.PermissionError
	if errors.As(err, &pe) {
		code := response.ErrPermissionDenied
		if pe.Action == "unclaim" {
			code = response.ErrNotClaimHolder
		}
		response.FailWithMessage(c, http.StatusForbidden, code, pe.Error())
		return true
	}

	var ce *apperr.ConflictError
	if errors.As(err, &ce) {
		response.FailWithMessage(c, http.StatusConflict, response.ErrCodeClaimed, ce.Error())
		return true
	}

	var nre *apperr.NoMatchingRoomsError
	if errors.As(err, &nre) {
		response.FailWithMessage(c, http.StatusNotFound, response.ErrNoMatchingRooms, nre.Error())
		return true
	}

	return false
}
