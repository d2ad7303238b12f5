package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oficinapro/workshop-service/internal/models"
)

// CreateVehicle handles POST /api/v1/vehicles
func (h *Handlers) CreateVehicle(c *gin.Context) {
	var req models.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	vehicle, err := h.vehicleService.CreateVehicle(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, vehicle)
}

// GetVehicle handles GET /api/v1/vehicles/:id
func (h *Handlers) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// UpdateVehicle handles PATCH /api/v1/vehicles/:id
func (h *Handlers) UpdateVehicle(c *gin.Context) {
	var req models.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	vehicle, err := h.vehicleService.UpdateVehicle(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, vehicle)
}

// ListVehicles handles GET /api/v1/vehicles
func (h *Handlers) ListVehicles(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	vehicles, total, err := h.vehicleService.ListVehicles(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicles": vehicles,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}
