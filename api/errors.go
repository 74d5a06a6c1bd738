package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrFlightNotFound),
		errors.Is(err, domain.ErrBookingNotFound),
		errors.Is(err, domain.ErrSeatNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInsufficientCapacity),
		errors.Is(err, domain.ErrDuplicateTransaction),
		errors.Is(err, domain.ErrBookingNumberConflict),
		errors.Is(err, domain.ErrBookingTerminal),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrInvalidFlightState),
		errors.Is(err, domain.ErrInvalidPaymentState):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
