package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/ledger"
	"github.com/gin-gonic/gin"
)

// LedgerHandler serves booking projections and direct status transitions.
// The reservation and payment flows live on BookingHandler.
type LedgerHandler struct {
	service ledger.LedgerUseCase
}

func NewLedgerHandler(service ledger.LedgerUseCase) *LedgerHandler {
	return &LedgerHandler{service: service}
}

func (h *LedgerHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.PATCH("/:number/status", h.updateStatus)
}

func (h *LedgerHandler) list(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user_id"})
			return
		}
		bookings, err := h.service.ListByUser(ctx, userID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	if raw := c.Query("flight_id"); raw != "" {
		flightID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flight_id"})
			return
		}
		bookings, err := h.service.ListByFlight(ctx, flightID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	if raw := c.Query("status"); raw != "" {
		status, err := domain.ParseBookingStatus(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		bookings, err := h.service.ListByStatus(ctx, status)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	fromRaw, toRaw := c.Query("from"), c.Query("to")
	if fromRaw != "" && toRaw != "" {
		from, err := parseTime(fromRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
			return
		}
		to, err := parseTime(toRaw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
		bookings, err := h.service.ListByDateRange(ctx, from, to)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, bookings)
		return
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "expected user_id, flight_id, status or a from/to range"})
}

type updateBookingStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *LedgerHandler) updateStatus(c *gin.Context) {
	var req updateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	target, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	booking, err := h.service.Transition(c.Request.Context(), c.Param("number"), target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
