package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/orchestrator"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service orchestrator.BookingUseCase
}

type reserveRequest struct {
	UserID     int64  `json:"user_id"`
	FlightID   int64  `json:"flight_id"`
	SeatClass  string `json:"seat_class"`
	Passengers int    `json:"passengers"`
}

type reportPaymentRequest struct {
	TransactionID string `json:"transaction_id"`
	Outcome       string `json:"outcome"`
}

func NewBookingHandler(service orchestrator.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.reserve)
	router.GET("/:number", h.get)
	router.POST("/:number/payments", h.reportPayment)
	router.DELETE("/:number", h.cancel)
}

func (h *BookingHandler) reserve(c *gin.Context) {
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Reserve(c.Request.Context(), orchestrator.ReserveInput{
		UserID:     req.UserID,
		FlightID:   req.FlightID,
		SeatClass:  req.SeatClass,
		Passengers: req.Passengers,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *BookingHandler) get(c *gin.Context) {
	booking, err := h.service.GetBooking(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) reportPayment(c *gin.Context) {
	var req reportPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.service.ReportPayment(c.Request.Context(), c.Param("number"), req.TransactionID, req.Outcome)
	if errors.Is(err, domain.ErrAlreadyFinalized) {
		// The booking was finalized by the sweep or an earlier callback.
		// Acknowledge idempotently with its current state.
		c.JSON(http.StatusOK, booking)
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) cancel(c *gin.Context) {
	requesterID, err := strconv.ParseInt(c.Query("requester_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid requester_id"})
		return
	}

	booking, err := h.service.Cancel(c.Request.Context(), c.Param("number"), requesterID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, booking)
}
