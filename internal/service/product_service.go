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

// ProductService handles the parts inventory.
type ProductService struct {
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

func NewProductService(productRepo repository.ProductRepository, logger *slog.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger.With("component", "product-service"),
	}
}

func (s *ProductService) CreateProduct(ctx context.Context, req *models.CreateProductRequest) (*models.Product, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if req.SalePrice.IsNegative() || req.CostPrice.IsNegative() {
		return nil, apperrors.NewValidationError("sale_price", "prices cannot be negative")
	}
	if req.CurrentStock < 0 || req.MinStock < 0 || req.MaxStock < 0 {
		return nil, apperrors.NewValidationError("current_stock", "stock levels cannot be negative")
	}

	unit := req.Unit
	if unit == "" {
		unit = "UN"
	}

	now := time.Now()
	product := &models.Product{
		ID:           repository.GenerateProductID(),
		Code:         req.Code,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		Brand:        req.Brand,
		Unit:         unit,
		CostPrice:    req.CostPrice,
		SalePrice:    req.SalePrice,
		CurrentStock: req.CurrentStock,
		MinStock:     req.MinStock,
		MaxStock:     req.MaxStock,
		Location:     req.Location,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	return s.productRepo.GetByID(ctx, id)
}

func (s *ProductService) UpdateProduct(ctx context.Context, id string, req *models.UpdateProductRequest) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.NewValidationError("name", "name cannot be empty")
		}
		product.Name = strings.TrimSpace(*req.Name)
	}
	if req.Code != nil {
		product.Code = *req.Code
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.Brand != nil {
		product.Brand = *req.Brand
	}
	if req.Unit != nil {
		product.Unit = *req.Unit
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return nil, apperrors.NewValidationError("cost_price", "cannot be negative")
		}
		product.CostPrice = *req.CostPrice
	}
	if req.SalePrice != nil {
		if req.SalePrice.IsNegative() {
			return nil, apperrors.NewValidationError("sale_price", "cannot be negative")
		}
		product.SalePrice = *req.SalePrice
	}
	if req.MinStock != nil {
		product.MinStock = *req.MinStock
	}
	if req.MaxStock != nil {
		product.MaxStock = *req.MaxStock
	}
	if req.Location != nil {
		product.Location = *req.Location
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}
	product.UpdatedAt = time.Now()

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *ProductService) ListProducts(ctx context.Context, limit, offset int) ([]*models.Product, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return s.productRepo.List(ctx, limit, offset)
}

// ListLowStock returns products at or below their minimum stock.
func (s *ProductService) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	return s.productRepo.ListLowStock(ctx)
}

// RestockProduct applies an "in" movement, e.g. a supplier delivery.
func (s *ProductService) RestockProduct(ctx context.Context, productID string, quantity int, reason string) error {
	if quantity < 1 {
		return apperrors.NewValidationError("quantity", "must be at least 1")
	}

	movement := &models.StockMovement{
		ID:        repository.GenerateMovementID(),
		ProductID: productID,
		Type:      models.StockMovementIn,
		Quantity:  quantity,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	return s.productRepo.AdjustStock(ctx, movement)
}
