package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/oficinapro/workshop-service/internal/models"
)

// CreateOrder handles POST /api/v1/orders
func (h *Handlers) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Error("failed to bind request", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, order)
}

// PreviewOrderTotals handles POST /api/v1/orders/preview. The form layer
// calls it on every edit to show live totals; nothing is persisted.
func (h *Handlers) PreviewOrderTotals(c *gin.Context) {
	var req struct {
		Items              []models.OrderItemRequest `json:"items"`
		DiscountAmount     decimal.Decimal           `json:"discount_amount"`
		DiscountPercentage decimal.Decimal           `json:"discount_percentage"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.orderService.PreviewTotals(
		c.Request.Context(), req.Items, req.DiscountAmount, req.DiscountPercentage,
	)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetOrder handles GET /api/v1/orders/:id
func (h *Handlers) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrder handles PATCH /api/v1/orders/:id
func (h *Handlers) UpdateOrder(c *gin.Context) {
	var req models.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// UpdateOrderStatus handles POST /api/v1/orders/:id/status
func (h *Handlers) UpdateOrderStatus(c *gin.Context) {
	var req models.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// CancelOrder handles POST /api/v1/orders/:id/cancel
func (h *Handlers) CancelOrder(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	order, err := h.orderService.CancelOrder(c.Request.Context(), c.Param("id"), req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

// ListOrders handles GET /api/v1/orders
func (h *Handlers) ListOrders(c *gin.Context) {
	filter := &models.OrderListFilter{
		ClientID:  c.Query("client_id"),
		VehicleID: c.Query("vehicle_id"),
		Limit:     intQuery(c, "limit", 20),
		Offset:    intQuery(c, "offset", 0),
	}

	if status := c.Query("status"); status != "" {
		s := models.OrderStatus(status)
		filter.Status = &s
	}
	if orderType := c.Query("type"); orderType != "" {
		t := models.OrderType(orderType)
		filter.Type = &t
	}

	orders, total, err := h.orderService.ListOrders(c.Request.Context(), filter)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"limit":  filter.Limit,
		"offset": filter.Offset,
	})
}

// GetClientOrders handles GET /api/v1/clients/:id/orders
func (h *Handlers) GetClientOrders(c *gin.Context) {
	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	orders, total, err := h.orderService.GetClientOrders(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders": orders,
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}

func intQuery(c *gin.Context, key string, defaultValue int) int {
	if value := c.Query(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
