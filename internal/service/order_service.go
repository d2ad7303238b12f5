package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/config"
	"github.com/oficinapro/workshop-service/internal/events"
	"github.com/oficinapro/workshop-service/internal/metrics"
	"github.com/oficinapro/workshop-service/internal/models"
	"github.com/oficinapro/workshop-service/internal/pricing"
	"github.com/oficinapro/workshop-service/internal/repository"
)

// OrderService handles order business logic. All persisted money fields come
// out of the pricing engine; client-supplied totals are never trusted.
type OrderService struct {
	orderRepo      repository.OrderRepository
	orderCache     repository.OrderCache
	clientRepo     repository.ClientRepository
	vehicleRepo    repository.VehicleRepository
	productRepo    repository.ProductRepository
	eventPublisher events.OrderEventPublisher
	config         *config.Config
	logger         *slog.Logger
}

var _ events.PaymentStatusUpdater = (*OrderService)(nil)

// NewOrderService creates a new order service.
func NewOrderService(
	orderRepo repository.OrderRepository,
	orderCache repository.OrderCache,
	clientRepo repository.ClientRepository,
	vehicleRepo repository.VehicleRepository,
	productRepo repository.ProductRepository,
	eventPublisher events.OrderEventPublisher,
	cfg *config.Config,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:      orderRepo,
		orderCache:     orderCache,
		clientRepo:     clientRepo,
		vehicleRepo:    vehicleRepo,
		productRepo:    productRepo,
		eventPublisher: eventPublisher,
		config:         cfg,
		logger:         logger.With("component", "order-service"),
	}
}

// PreviewTotals prices a draft without persisting anything. The form layer
// calls it on every relevant edit.
func (s *OrderService) PreviewTotals(ctx context.Context, items []models.OrderItemRequest, discountAmount, discountPercentage decimal.Decimal) (*pricing.Result, error) {
	draft, err := s.buildDraft(ctx, items)
	if err != nil {
		return nil, err
	}

	result, err := pricing.ComputeTotals(pricing.Input{
		Items:              draft.Items(),
		DiscountAmount:     discountAmount,
		DiscountPercentage: discountPercentage,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateOrder validates, prices and persists a new order.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	s.logger.Info("creating order",
		"client_id", req.ClientID,
		"type", req.Type,
		"item_count", len(req.Items),
	)

	if err := ValidateCreateOrderRequest(req); err != nil {
		return nil, err
	}

	if _, err := s.clientRepo.GetByID(ctx, req.ClientID); err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("client_id", "client not found")
		}
		return nil, err
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, req.VehicleID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, apperrors.NewValidationError("vehicle_id", "vehicle not found")
		}
		return nil, err
	}
	if vehicle.ClientID != req.ClientID {
		return nil, apperrors.NewValidationError("vehicle_id", "vehicle does not belong to client")
	}

	draft, err := s.buildDraft(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	result, err := pricing.ComputeTotals(pricing.Input{
		Items:              draft.Items(),
		DiscountAmount:     req.DiscountAmount,
		DiscountPercentage: req.DiscountPercentage,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	order := &models.Order{
		ID:                 repository.GenerateOrderID(),
		Number:             repository.GenerateOrderNumber(req.Type, now),
		ClientID:           req.ClientID,
		VehicleID:          req.VehicleID,
		Type:               req.Type,
		Status:             models.OrderStatusOpen,
		CurrentKM:          req.CurrentKM,
		Complaint:          req.Complaint,
		Diagnosis:          req.Diagnosis,
		Observations:       req.Observations,
		Items:              draft.Items(),
		Subtotal:           result.Subtotal,
		DiscountAmount:     req.DiscountAmount,
		DiscountPercentage: req.DiscountPercentage,
		TotalAmount:        result.Total,
		PaymentMethod:      req.PaymentMethod,
		PaymentStatus:      models.PaymentStatusPending,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.orderRepo.Create(ctx, order); err != nil {
		s.logger.Error("failed to create order", "client_id", req.ClientID, "error", err)
		return nil, err
	}

	s.cacheOrder(ctx, order)
	s.publishCreated(ctx, order)

	total, _ := order.TotalAmount.Float64()
	metrics.ObserveOrderCreated(string(order.Type), total)

	s.logger.Info("order created",
		"order_id", order.ID,
		"number", order.Number,
		"total", order.TotalAmount.String(),
	)
	return order, nil
}

// GetOrder retrieves an order by ID, cache first.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	if s.config.Features.EnableOrderCaching {
		if order, err := s.orderCache.Get(ctx, id); err == nil && order != nil {
			return order, nil
		}
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableOrderCaching {
		s.orderCache.Set(ctx, order)
	}
	return order, nil
}

// UpdateOrder applies a partial edit and re-prices the order. Orders past
// the approved state no longer accept item or discount changes.
func (s *OrderService) UpdateOrder(ctx context.Context, id string, req *models.UpdateOrderRequest) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.IsEditable() {
		return nil, apperrors.NewValidationError("status",
			fmt.Sprintf("order in status %s cannot be edited", order.Status))
	}

	if req.CurrentKM != nil {
		order.CurrentKM = req.CurrentKM
	}
	if req.Complaint != nil {
		order.Complaint = *req.Complaint
	}
	if req.Diagnosis != nil {
		order.Diagnosis = *req.Diagnosis
	}
	if req.Observations != nil {
		order.Observations = *req.Observations
	}
	if req.PaymentMethod != nil {
		order.PaymentMethod = *req.PaymentMethod
	}
	if req.DiscountAmount != nil {
		order.DiscountAmount = *req.DiscountAmount
	}
	if req.DiscountPercentage != nil {
		order.DiscountPercentage = *req.DiscountPercentage
	}
	if req.Items != nil {
		draft, err := s.buildDraft(ctx, *req.Items)
		if err != nil {
			return nil, err
		}
		order.Items = draft.Items()
	}

	result, err := pricing.ComputeTotals(pricing.Input{
		Items:              pricing.NewDraftFromItems(order.Items).Items(),
		DiscountAmount:     order.DiscountAmount,
		DiscountPercentage: order.DiscountPercentage,
	})
	if err != nil {
		return nil, err
	}
	order.Subtotal = result.Subtotal
	order.TotalAmount = result.Total
	order.UpdatedAt = time.Now()

	if err := s.orderRepo.Update(ctx, order); err != nil {
		return nil, err
	}

	s.invalidateOrder(ctx, order)
	return order, nil
}

// UpdateOrderStatus moves the order through its workflow. Completing a
// service order consumes stock for part items that reference a product.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id string, req *models.UpdateOrderStatusRequest) (*models.Order, error) {
	if err := ValidateUpdateOrderStatusRequest(req); err != nil {
		return nil, err
	}

	current, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isValidStatusTransition(current.Status, req.Status) {
		return nil, apperrors.NewValidationError("status", fmt.Sprintf(
			"invalid status transition from %s to %s", current.Status, req.Status))
	}

	previousStatus := current.Status

	if req.Status == models.OrderStatusCompleted && current.Type == models.OrderTypeServiceOrder {
		if err := s.consumeStock(ctx, current); err != nil {
			return nil, err
		}
	}

	order, err := s.orderRepo.UpdateStatus(ctx, id, req.Status, req.Notes)
	if err != nil {
		return nil, err
	}

	s.invalidateOrder(ctx, order)

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderStatusChanged(ctx, order, previousStatus); err != nil {
			s.logger.Error("failed to publish status change event", "order_id", order.ID, "error", err)
		}
	}

	return order, nil
}

// CancelOrder cancels an order with a reason.
func (s *OrderService) CancelOrder(ctx context.Context, id string, reason string) (*models.Order, error) {
	if err := ValidateCancellationReason(reason); err != nil {
		return nil, err
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !order.CanCancel() {
		return nil, apperrors.NewValidationError("status", "order cannot be cancelled in current state")
	}

	order, err = s.orderRepo.UpdateStatus(ctx, id, models.OrderStatusCancelled, reason)
	if err != nil {
		return nil, err
	}

	s.invalidateOrder(ctx, order)

	if s.config.Features.EnableOrderEvents {
		if err := s.eventPublisher.PublishOrderCancelled(ctx, order, reason); err != nil {
			s.logger.Error("failed to publish cancellation event", "order_id", order.ID, "error", err)
		}
	}

	return order, nil
}

// ListOrders retrieves orders based on filter criteria.
func (s *OrderService) ListOrders(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error) {
	if err := ValidateOrderListFilter(filter); err != nil {
		return nil, 0, err
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	return s.orderRepo.List(ctx, filter)
}

// GetClientOrders retrieves orders for one client, first page cached.
func (s *OrderService) GetClientOrders(ctx context.Context, clientID string, limit, offset int) ([]*models.Order, int, error) {
	useCache := s.config.Features.EnableOrderCaching && offset == 0
	if useCache {
		if orders, err := s.orderCache.GetByClientID(ctx, clientID); err == nil && orders != nil {
			return orders, len(orders), nil
		}
	}

	filter := &models.OrderListFilter{ClientID: clientID, Limit: limit, Offset: offset}
	orders, total, err := s.ListOrders(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	if useCache {
		s.orderCache.SetByClientID(ctx, clientID, orders)
	}
	return orders, total, nil
}

// SetOrderPaymentStatus applies a settled payment state. It implements
// events.PaymentStatusUpdater for the payments consumer.
func (s *OrderService) SetOrderPaymentStatus(ctx context.Context, orderID string, status models.PaymentStatus) error {
	if err := s.orderRepo.UpdatePaymentStatus(ctx, orderID, status); err != nil {
		return err
	}
	if s.config.Features.EnableOrderCaching {
		s.orderCache.Delete(ctx, orderID)
	}
	return nil
}

// buildDraft turns request items into a priced draft. Part items that
// reference a product are sourced from stock: name and sale price default
// from the product record when the request leaves them blank.
func (s *OrderService) buildDraft(ctx context.Context, items []models.OrderItemRequest) (*pricing.Draft, error) {
	draft := pricing.NewDraft()

	for i, reqItem := range items {
		description := reqItem.Description
		unitPrice := reqItem.UnitPrice

		if reqItem.Kind == pricing.ItemKindPart && reqItem.ProductID != "" {
			product, err := s.productRepo.GetByID(ctx, reqItem.ProductID)
			if err != nil {
				if apperrors.IsNotFound(err) {
					return nil, apperrors.NewValidationError("items",
						fmt.Sprintf("item %d references unknown product", i))
				}
				return nil, err
			}
			if !product.IsActive {
				return nil, apperrors.NewValidationError("items",
					fmt.Sprintf("item %d references inactive product %s", i, product.Name))
			}
			if description == "" {
				description = product.Name
			}
			if unitPrice.IsZero() {
				unitPrice = product.SalePrice
			}
		}

		item, err := draft.AddItem(reqItem.Kind, description, reqItem.Quantity, unitPrice)
		if err != nil {
			return nil, err
		}
		if reqItem.AdditionalInfo != "" || reqItem.ProductID != "" {
			info := reqItem.AdditionalInfo
			productID := reqItem.ProductID
			if _, err := draft.UpdateItem(item.ID, pricing.Patch{
				AdditionalInfo: &info,
				ProductID:      &productID,
			}); err != nil {
				return nil, err
			}
		}
	}

	return draft, nil
}

// consumeStock writes an "out" movement for every part item with a product
// reference. Insufficient stock aborts the completion.
func (s *OrderService) consumeStock(ctx context.Context, order *models.Order) error {
	for _, item := range order.Items {
		if item.Kind != pricing.ItemKindPart || item.ProductID == "" {
			continue
		}

		movement := &models.StockMovement{
			ID:        repository.GenerateMovementID(),
			ProductID: item.ProductID,
			OrderID:   order.ID,
			Type:      models.StockMovementOut,
			Quantity:  item.Quantity,
			Reason:    "order " + order.Number,
			CreatedAt: time.Now(),
		}
		if err := s.productRepo.AdjustStock(ctx, movement); err != nil {
			return err
		}
	}
	return nil
}

func (s *OrderService) cacheOrder(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderCaching {
		return
	}
	if err := s.orderCache.Set(ctx, order); err != nil {
		s.logger.Error("failed to cache order", "order_id", order.ID, "error", err)
	}
	s.orderCache.InvalidateByClientID(ctx, order.ClientID)
}

func (s *OrderService) invalidateOrder(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderCaching {
		return
	}
	s.orderCache.Delete(ctx, order.ID)
	s.orderCache.InvalidateByClientID(ctx, order.ClientID)
}

func (s *OrderService) publishCreated(ctx context.Context, order *models.Order) {
	if !s.config.Features.EnableOrderEvents {
		return
	}
	if err := s.eventPublisher.PublishOrderCreated(ctx, order); err != nil {
		s.logger.Error("failed to publish order created event", "order_id", order.ID, "error", err)
	}
}

func isValidStatusTransition(from, to models.OrderStatus) bool {
	validTransitions := map[models.OrderStatus][]models.OrderStatus{
		models.OrderStatusOpen:       {models.OrderStatusApproved, models.OrderStatusInProgress, models.OrderStatusCancelled},
		models.OrderStatusApproved:   {models.OrderStatusInProgress, models.OrderStatusCancelled},
		models.OrderStatusInProgress: {models.OrderStatusCompleted, models.OrderStatusCancelled},
		models.OrderStatusCompleted:  {},
		models.OrderStatusCancelled:  {},
	}

	allowed, ok := validTransitions[from]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == to {
			return true
		}
	}
	return false
}
