package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/service/inventory"
	"github.com/gin-gonic/gin"
)

type FlightHandler struct {
	service inventory.InventoryUseCase
}

func NewFlightHandler(service inventory.InventoryUseCase) *FlightHandler {
	return &FlightHandler{service: service}
}

func (h *FlightHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.search)
	router.GET("/:id", h.get)
	router.PATCH("/:id/status", h.updateStatus)
}

func (h *FlightHandler) search(c *gin.Context) {
	origin, err := strconv.ParseInt(c.Query("origin"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid origin"})
		return
	}
	destination, err := strconv.ParseInt(c.Query("destination"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid destination"})
		return
	}
	from, err := parseTime(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from"})
		return
	}
	var to time.Time
	if raw := c.Query("to"); raw != "" {
		if to, err = parseTime(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to"})
			return
		}
	} else {
		// Default to a one-day departure window.
		to = from.Add(24 * time.Hour)
	}

	flights, err := h.service.SearchFlights(c.Request.Context(), origin, destination, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flights)
}

func (h *FlightHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	flight, err := h.service.GetFlight(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

type updateFlightStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *FlightHandler) updateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateFlightStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status, err := domain.ParseFlightStatus(req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	flight, err := h.service.UpdateFlightStatus(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, flight)
}

// parseTime accepts RFC3339 or bare dates.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unparsable time %q", s)
}
