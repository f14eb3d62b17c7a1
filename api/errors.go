package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/stayescrow/internal/domain"
	"github.com/gin-gonic/gin"
)

func writeError(c *gin.Context, err error) {
	c.JSON(statusFromError(err), gin.H{"error": err.Error()})
}

func statusFromError(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotHost),
		errors.Is(err, domain.ErrNotGuest),
		errors.Is(err, domain.ErrNotParty),
		errors.Is(err, domain.ErrNotAdmin):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSlotNotFound),
		errors.Is(err, domain.ErrBookingNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSlotInactive),
		errors.Is(err, domain.ErrAlreadyBooked),
		errors.Is(err, domain.ErrNotBooked),
		errors.Is(err, domain.ErrAlreadySettled),
		errors.Is(err, domain.ErrTooEarly),
		errors.Is(err, domain.ErrTooLateToCancel):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidTimes),
		errors.Is(err, domain.ErrInvalidValue),
		errors.Is(err, domain.ErrParamOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrReentrancy):
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}
