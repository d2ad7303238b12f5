package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/models"
	"github.com/oficinapro/workshop-service/internal/repository"
)

// VehicleService handles the vehicle registry.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	clientRepo  repository.ClientRepository
	logger      *slog.Logger
}

func NewVehicleService(vehicleRepo repository.VehicleRepository, clientRepo repository.ClientRepository, logger *slog.Logger) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		clientRepo:  clientRepo,
		logger:      logger.With("component", "vehicle-service"),
	}
}

func (s *VehicleService) CreateVehicle(ctx context.Context, req *models.CreateVehicleRequest) (*models.Vehicle, error) {
	if strings.TrimSpace(req.Plate) == "" {
		return nil, apperrors.NewValidationError("plate", "plate is required")
	}

	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("client_id", "client not found")
		}
		return nil, err
	}

	now := time.Now()
	vehicle := &models.Vehicle{
		ID:             repository.GenerateVehicleID(),
		ClientID:       req.ClientID,
		Plate:          strings.ToUpper(strings.TrimSpace(req.Plate)),
		Chassis:        req.Chassis,
		Year:           req.Year,
		Manufacturer:   req.Manufacturer,
		Model:          req.Model,
		Color:          req.Color,
		CurrentKM:      req.CurrentKM,
		AdditionalInfo: req.AdditionalInfo,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) GetVehicle(ctx context.Context, id string) (*models.Vehicle, error) {
	return s.vehicleRepo.GetByID(ctx, id)
}

func (s *VehicleService) UpdateVehicle(ctx context.Context, id string, req *models.UpdateVehicleRequest) (*models.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Plate != nil {
		if strings.TrimSpace(*req.Plate) == "" {
			return nil, apperrors.NewValidationError("plate", "plate cannot be empty")
		}
		vehicle.Plate = strings.ToUpper(strings.TrimSpace(*req.Plate))
	}
	if req.Chassis != nil {
		vehicle.Chassis = *req.Chassis
	}
	if req.Year != nil {
		vehicle.Year = *req.Year
	}
	if req.Manufacturer != nil {
		vehicle.Manufacturer = *req.Manufacturer
	}
	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Color != nil {
		vehicle.Color = *req.Color
	}
	if req.CurrentKM != nil {
		vehicle.CurrentKM = *req.CurrentKM
	}
	if req.AdditionalInfo != nil {
		vehicle.AdditionalInfo = *req.AdditionalInfo
	}
	if req.IsActive != nil {
		vehicle.IsActive = *req.IsActive
	}
	vehicle.UpdatedAt = time.Now()

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (s *VehicleService) ListVehicles(ctx context.Context, limit, offset int) ([]*models.Vehicle, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.vehicleRepo.List(ctx, limit, offset)
}

func (s *VehicleService) ListClientVehicles(ctx context.Context, clientID string) ([]*models.Vehicle, error) {
	return s.vehicleRepo.ListByClientID(ctx, clientID)
}
