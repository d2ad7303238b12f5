package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oficinapro/workshop-service/internal/config"
	"github.com/oficinapro/workshop-service/internal/handlers"
	"github.com/oficinapro/workshop-service/internal/metrics"
)

type Server struct {
	config   *config.Config
	router   *gin.Engine
	handlers *handlers.Handlers
	logger   *slog.Logger
	httpSrv  *http.Server
}

func NewServer(cfg *config.Config, h *handlers.Handlers, logger *slog.Logger) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(metrics.Middleware())

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		logger:   logger.With("component", "server"),
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/orders", s.handlers.CreateOrder)
		v1.POST("/orders/preview", s.handlers.PreviewOrderTotals)
		v1.GET("/orders", s.handlers.ListOrders)
		v1.GET("/orders/:id", s.handlers.GetOrder)
		v1.PATCH("/orders/:id", s.handlers.UpdateOrder)
		v1.POST("/orders/:id/status", s.handlers.UpdateOrderStatus)
		v1.POST("/orders/:id/cancel", s.handlers.CancelOrder)

		v1.POST("/clients", s.handlers.CreateClient)
		v1.GET("/clients", s.handlers.ListClients)
		v1.GET("/clients/:id", s.handlers.GetClient)
		v1.PATCH("/clients/:id", s.handlers.UpdateClient)
		v1.GET("/clients/:id/orders", s.handlers.GetClientOrders)
		v1.GET("/clients/:id/vehicles", s.handlers.GetClientVehicles)

		v1.POST("/vehicles", s.handlers.CreateVehicle)
		v1.GET("/vehicles", s.handlers.ListVehicles)
		v1.GET("/vehicles/:id", s.handlers.GetVehicle)
		v1.PATCH("/vehicles/:id", s.handlers.UpdateVehicle)

		v1.POST("/products", s.handlers.CreateProduct)
		v1.GET("/products", s.handlers.ListProducts)
		v1.GET("/products/low-stock", s.handlers.ListLowStockProducts)
		v1.GET("/products/:id", s.handlers.GetProduct)
		v1.PATCH("/products/:id", s.handlers.UpdateProduct)
		v1.POST("/products/:id/restock", s.handlers.RestockProduct)
	}
}

// Run starts the HTTP server and blocks until it stops.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)
	s.httpSrv = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
	}

	s.logger.Info("starting server", "addr", addr)
	if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests before stopping.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}
