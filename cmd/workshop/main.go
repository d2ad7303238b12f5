package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oficinapro/workshop-service/internal/config"
	"github.com/oficinapro/workshop-service/internal/events"
	"github.com/oficinapro/workshop-service/internal/handlers"
	"github.com/oficinapro/workshop-service/internal/repository"
	"github.com/oficinapro/workshop-service/internal/server"
	"github.com/oficinapro/workshop-service/internal/service"

	_ "github.com/lib/pq"
)

func main() {
	cfg := config.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})).With("service", "workshop-service")
	slog.SetDefault(logger)

	logger.Info("starting workshop-service", "port", cfg.Server.Port)

	db, err := initDatabase(cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	orderRepo := repository.NewPostgresOrderRepository(db, logger)
	clientRepo := repository.NewPostgresClientRepository(db, logger)
	vehicleRepo := repository.NewPostgresVehicleRepository(db, logger)
	productRepo := repository.NewPostgresProductRepository(db, logger)
	orderCache := repository.NewRedisOrderCache(cfg.Redis, logger)

	eventPublisher := events.NewKafkaPublisher(cfg.Kafka, logger)
	defer eventPublisher.Close()

	orderService := service.NewOrderService(
		orderRepo,
		orderCache,
		clientRepo,
		vehicleRepo,
		productRepo,
		eventPublisher,
		cfg,
		logger,
	)
	clientService := service.NewClientService(clientRepo, logger)
	vehicleService := service.NewVehicleService(vehicleRepo, clientRepo, logger)
	productService := service.NewProductService(productRepo, logger)

	h := handlers.NewHandlers(orderService, clientService, vehicleService, productService, db, cfg, logger)

	srv := server.NewServer(cfg, h, logger)

	go func() {
		if err := srv.Run(); err != nil {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	paymentConsumer := events.NewKafkaConsumer(cfg.Kafka, orderService, logger)
	go func() {
		if err := paymentConsumer.Start(context.Background()); err != nil {
			logger.Error("payment consumer failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	paymentConsumer.Stop()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}

	logger.Info("server exited")
}

func initDatabase(cfg *config.Config, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.ConnectionString())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	logger.Info("database connected", "host", cfg.Database.Host, "name", cfg.Database.Name)

	return db, nil
}
