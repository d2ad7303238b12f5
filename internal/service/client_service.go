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

// ClientService handles the client registry.
type ClientService struct {
	clientRepo repository.ClientRepository
	logger     *slog.Logger
}

func NewClientService(clientRepo repository.ClientRepository, logger *slog.Logger) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		logger:     logger.With("component", "client-service"),
	}
}

func (s *ClientService) CreateClient(ctx context.Context, req *models.CreateClientRequest) (*models.Client, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}

	now := time.Now()
	client := &models.Client{
		ID:        repository.GenerateClientID(),
		Name:      strings.TrimSpace(req.Name),
		Email:     req.Email,
		Phone:     req.Phone,
		CPFCNPJ:   req.CPFCNPJ,
		Address:   req.Address,
		City:      req.City,
		State:     req.State,
		ZipCode:   req.ZipCode,
		Notes:     req.Notes,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) GetClient(ctx context.Context, id string) (*models.Client, error) {
	return s.clientRepo.GetByID(ctx, id)
}

func (s *ClientService) UpdateClient(ctx context.Context, id string, req *models.UpdateClientRequest) (*models.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.NewValidationError("name", "name cannot be empty")
		}
		client.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		client.Email = *req.Email
	}
	if req.Phone != nil {
		client.Phone = *req.Phone
	}
	if req.CPFCNPJ != nil {
		client.CPFCNPJ = *req.CPFCNPJ
	}
	if req.Address != nil {
		client.Address = *req.Address
	}
	if req.City != nil {
		client.City = *req.City
	}
	if req.State != nil {
		client.State = *req.State
	}
	if req.ZipCode != nil {
		client.ZipCode = *req.ZipCode
	}
	if req.Notes != nil {
		client.Notes = *req.Notes
	}
	if req.IsActive != nil {
		client.IsActive = *req.IsActive
	}
	client.UpdatedAt = time.Now()

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, err
	}
	return client, nil
}

func (s *ClientService) ListClients(ctx context.Context, limit, offset int) ([]*models.Client, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.clientRepo.List(ctx, limit, offset)
}
