package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oficinapro/workshop-service/internal/models"
)

// CreateClient handles POST /api/v1/clients
func (h *Handlers) CreateClient(c *gin.Context) {
	var req models.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, client)
}

// GetClient handles GET /api/v1/clients/:id
func (h *Handlers) GetClient(c *gin.Context) {
	client, err := h.clientService.GetClient(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// UpdateClient handles PATCH /api/v1/clients/:id
func (h *Handlers) UpdateClient(c *gin.Context) {
	var req models.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, client)
}

// ListClients handles GET /api/v1/clients
func (h *Handlers) ListClients(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	clients, total, err := h.clientService.ListClients(c.Request.Context(), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clients": clients,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetClientVehicles handles GET /api/v1/clients/:id/vehicles
func (h *Handlers) GetClientVehicles(c *gin.Context) {
	vehicles, err := h.vehicleService.ListClientVehicles(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles, "count": len(vehicles)})
}
