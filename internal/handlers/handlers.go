package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/config"
	"github.com/oficinapro/workshop-service/internal/service"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handlers holds all HTTP handlers for the workshop service.
type Handlers struct {
	orderService   *service.OrderService
	clientService  *service.ClientService
	vehicleService *service.VehicleService
	productService *service.ProductService
	db             Pinger
	config         *config.Config
	logger         *slog.Logger
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	orderService *service.OrderService,
	clientService *service.ClientService,
	vehicleService *service.VehicleService,
	productService *service.ProductService,
	db Pinger,
	cfg *config.Config,
	logger *slog.Logger,
) *Handlers {
	return &Handlers{
		orderService:   orderService,
		clientService:  clientService,
		vehicleService: vehicleService,
		productService: productService,
		db:             db,
		config:         cfg,
		logger:         logger.With("component", "handlers"),
	}
}

func handleError(c *gin.Context, err error) {
	if apperrors.IsNotFound(err) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	var validationErr *apperrors.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": validationErr.Message,
			"field": validationErr.Field,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
