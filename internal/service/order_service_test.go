package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/config"
	"github.com/oficinapro/workshop-service/internal/models"
	"github.com/oficinapro/workshop-service/internal/pricing"
	"github.com/oficinapro/workshop-service/internal/repository"
)

// In-memory fakes for the repository interfaces.

type fakeOrderRepo struct {
	orders map[string]*models.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[string]*models.Order)}
}

func (r *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) Update(ctx context.Context, order *models.Order) error {
	if _, ok := r.orders[order.ID]; !ok {
		return apperrors.ErrNotFound
	}
	r.orders[order.ID] = order
	return nil
}

func (r *fakeOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, notes string) (*models.Order, error) {
	order, ok := r.orders[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	order.Status = status
	if notes != "" {
		order.Observations = notes
	}
	cp := *order
	return &cp, nil
}

func (r *fakeOrderRepo) UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error {
	order, ok := r.orders[id]
	if !ok {
		return apperrors.ErrNotFound
	}
	order.PaymentStatus = status
	return nil
}

func (r *fakeOrderRepo) List(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error) {
	var out []*models.Order
	for _, order := range r.orders {
		if filter.ClientID != "" && order.ClientID != filter.ClientID {
			continue
		}
		out = append(out, order)
	}
	return out, len(out), nil
}

type fakeClientRepo struct {
	clients map[string]*models.Client
}

func (r *fakeClientRepo) Create(ctx context.Context, c *models.Client) error {
	r.clients[c.ID] = c
	return nil
}

func (r *fakeClientRepo) GetByID(ctx context.Context, id string) (*models.Client, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return c, nil
}

func (r *fakeClientRepo) Update(ctx context.Context, c *models.Client) error { return nil }

func (r *fakeClientRepo) List(ctx context.Context, limit, offset int) ([]*models.Client, int, error) {
	return nil, 0, nil
}

type fakeVehicleRepo struct {
	vehicles map[string]*models.Vehicle
}

func (r *fakeVehicleRepo) Create(ctx context.Context, v *models.Vehicle) error {
	r.vehicles[v.ID] = v
	return nil
}

func (r *fakeVehicleRepo) GetByID(ctx context.Context, id string) (*models.Vehicle, error) {
	v, ok := r.vehicles[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return v, nil
}

func (r *fakeVehicleRepo) Update(ctx context.Context, v *models.Vehicle) error { return nil }

func (r *fakeVehicleRepo) ListByClientID(ctx context.Context, clientID string) ([]*models.Vehicle, error) {
	return nil, nil
}

func (r *fakeVehicleRepo) List(ctx context.Context, limit, offset int) ([]*models.Vehicle, int, error) {
	return nil, 0, nil
}

type fakeProductRepo struct {
	products  map[string]*models.Product
	movements []*models.StockMovement
}

func (r *fakeProductRepo) Create(ctx context.Context, p *models.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *fakeProductRepo) GetByID(ctx context.Context, id string) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (r *fakeProductRepo) Update(ctx context.Context, p *models.Product) error { return nil }

func (r *fakeProductRepo) List(ctx context.Context, limit, offset int) ([]*models.Product, int, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) ListLowStock(ctx context.Context) ([]*models.Product, error) {
	var out []*models.Product
	for _, p := range r.products {
		if p.IsActive && p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) AdjustStock(ctx context.Context, m *models.StockMovement) error {
	p, ok := r.products[m.ProductID]
	if !ok {
		return apperrors.ErrNotFound
	}
	delta := m.Quantity
	if m.Type == models.StockMovementOut {
		delta = -delta
	}
	if p.CurrentStock+delta < 0 {
		return apperrors.NewValidationError("quantity", "insufficient stock")
	}
	p.CurrentStock += delta
	r.movements = append(r.movements, m)
	return nil
}

type fakePublisher struct {
	created   []string
	changed   []string
	cancelled []string
}

func (p *fakePublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	p.created = append(p.created, order.ID)
	return nil
}

func (p *fakePublisher) PublishOrderStatusChanged(ctx context.Context, order *models.Order, previous models.OrderStatus) error {
	p.changed = append(p.changed, order.ID)
	return nil
}

func (p *fakePublisher) PublishOrderCancelled(ctx context.Context, order *models.Order, reason string) error {
	p.cancelled = append(p.cancelled, order.ID)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fixture struct {
	svc       *OrderService
	orders    *fakeOrderRepo
	products  *fakeProductRepo
	publisher *fakePublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	clients := &fakeClientRepo{clients: map[string]*models.Client{
		"cli_1": {ID: "cli_1", Name: "Maria Silva", IsActive: true},
	}}
	vehicles := &fakeVehicleRepo{vehicles: map[string]*models.Vehicle{
		"veh_1": {ID: "veh_1", ClientID: "cli_1", Plate: "ABC1D23", Manufacturer: "Fiat", Model: "Uno", Year: 2015, IsActive: true},
		"veh_2": {ID: "veh_2", ClientID: "cli_other", Plate: "XYZ9K88", IsActive: true},
	}}
	products := &fakeProductRepo{products: map[string]*models.Product{
		"prd_oil": {
			ID: "prd_oil", Name: "Engine Oil 5W30", Unit: "un",
			SalePrice: decimal.RequireFromString("45.90"), CurrentStock: 10, MinStock: 2, IsActive: true,
		},
		"prd_dead": {ID: "prd_dead", Name: "Discontinued Filter", IsActive: false},
	}}
	orders := newFakeOrderRepo()
	publisher := &fakePublisher{}

	cfg := &config.Config{
		Features: config.FeatureFlags{EnableOrderEvents: true},
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	var cache repository.OrderCache = noopCache{}

	svc := NewOrderService(orders, cache, clients, vehicles, products, publisher, cfg, logger)

	return &fixture{svc: svc, orders: orders, products: products, publisher: publisher}
}

type noopCache struct{}

func (noopCache) Get(ctx context.Context, id string) (*models.Order, error) { return nil, nil }
func (noopCache) Set(ctx context.Context, order *models.Order) error        { return nil }
func (noopCache) Delete(ctx context.Context, id string) error               { return nil }
func (noopCache) GetByClientID(ctx context.Context, clientID string) ([]*models.Order, error) {
	return nil, nil
}
func (noopCache) SetByClientID(ctx context.Context, clientID string, orders []*models.Order) error {
	return nil
}
func (noopCache) InvalidateByClientID(ctx context.Context, clientID string) error { return nil }

func serviceItem(desc string, qty int, price string) models.OrderItemRequest {
	return models.OrderItemRequest{
		Kind:        pricing.ItemKindService,
		Description: desc,
		Quantity:    qty,
		UnitPrice:   decimal.RequireFromString(price),
	}
}

func TestCreateOrder_ComputesTotals(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeServiceOrder,
		Items: []models.OrderItemRequest{
			serviceItem("Oil change", 1, "80.00"),
			serviceItem("Brake inspection", 2, "60.00"),
		},
		DiscountAmount: decimal.RequireFromString("20.00"),
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if got := order.Subtotal.String(); got != "200" {
		t.Errorf("Expected subtotal 200, got %s", got)
	}
	if got := order.TotalAmount.String(); got != "180" {
		t.Errorf("Expected total 180, got %s", got)
	}
	if order.Status != models.OrderStatusOpen {
		t.Errorf("Expected status open, got %s", order.Status)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		t.Errorf("Expected payment status pending, got %s", order.PaymentStatus)
	}
	if len(f.publisher.created) != 1 {
		t.Errorf("Expected 1 created event, got %d", len(f.publisher.created))
	}
}

func TestCreateOrder_PercentageBeatsAmount(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeBudget,
		Items: []models.OrderItemRequest{
			serviceItem("Full service", 1, "200.00"),
		},
		DiscountAmount:     decimal.RequireFromString("50.00"),
		DiscountPercentage: decimal.RequireFromString("10"),
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	// 10% of 200, not the flat 50.
	if got := order.TotalAmount.String(); got != "180" {
		t.Errorf("Expected total 180, got %s", got)
	}
}

func TestCreateOrder_PartSourcedFromProduct(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeServiceOrder,
		Items: []models.OrderItemRequest{
			{Kind: pricing.ItemKindPart, ProductID: "prd_oil", Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	item := order.Items[0]
	if item.Description != "Engine Oil 5W30" {
		t.Errorf("Expected description from product, got %q", item.Description)
	}
	if got := item.UnitPrice.String(); got != "45.9" {
		t.Errorf("Expected unit price from product, got %s", got)
	}
	if got := order.Subtotal.String(); got != "91.8" {
		t.Errorf("Expected subtotal 91.8, got %s", got)
	}
}

func TestCreateOrder_InactiveProductRejected(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeServiceOrder,
		Items: []models.OrderItemRequest{
			{Kind: pricing.ItemKindPart, ProductID: "prd_dead", Quantity: 1},
		},
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestCreateOrder_VehicleMustBelongToClient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_2",
		Type:      models.OrderTypeBudget,
		Items:     []models.OrderItemRequest{serviceItem("Alignment", 1, "100.00")},
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestCreateOrder_UnknownClient(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_missing",
		VehicleID: "veh_1",
		Type:      models.OrderTypeBudget,
		Items:     []models.OrderItemRequest{serviceItem("Alignment", 1, "100.00")},
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestUpdateOrder_RepricesOnItemChange(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeBudget,
		Items:     []models.OrderItemRequest{serviceItem("Alignment", 1, "100.00")},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	newItems := []models.OrderItemRequest{
		serviceItem("Alignment", 1, "100.00"),
		serviceItem("Balancing", 1, "50.00"),
	}
	pct := decimal.RequireFromString("10")
	updated, err := f.svc.UpdateOrder(context.Background(), order.ID, &models.UpdateOrderRequest{
		Items:              &newItems,
		DiscountPercentage: &pct,
	})
	if err != nil {
		t.Fatalf("UpdateOrder failed: %v", err)
	}

	if got := updated.Subtotal.String(); got != "150" {
		t.Errorf("Expected subtotal 150, got %s", got)
	}
	if got := updated.TotalAmount.String(); got != "135" {
		t.Errorf("Expected total 135, got %s", got)
	}
}

func TestUpdateOrder_RejectedPastApproved(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeServiceOrder,
		Items:     []models.OrderItemRequest{serviceItem("Engine rebuild", 1, "3000.00")},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	f.orders.orders[order.ID].Status = models.OrderStatusInProgress

	complaint := "knocking noise"
	_, err = f.svc.UpdateOrder(context.Background(), order.ID, &models.UpdateOrderRequest{
		Complaint: &complaint,
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestUpdateOrderStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		wantErr bool
	}{
		{"open to approved", models.OrderStatusOpen, models.OrderStatusApproved, false},
		{"open to in_progress", models.OrderStatusOpen, models.OrderStatusInProgress, false},
		{"approved to in_progress", models.OrderStatusApproved, models.OrderStatusInProgress, false},
		{"in_progress to completed", models.OrderStatusInProgress, models.OrderStatusCompleted, false},
		{"open to completed", models.OrderStatusOpen, models.OrderStatusCompleted, true},
		{"completed to open", models.OrderStatusCompleted, models.OrderStatusOpen, true},
		{"cancelled to approved", models.OrderStatusCancelled, models.OrderStatusApproved, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
				ClientID:  "cli_1",
				VehicleID: "veh_1",
				Type:      models.OrderTypeBudget,
				Items:     []models.OrderItemRequest{serviceItem("Inspection", 1, "50.00")},
			})
			if err != nil {
				t.Fatalf("CreateOrder failed: %v", err)
			}
			f.orders.orders[order.ID].Status = tt.from

			_, err = f.svc.UpdateOrderStatus(context.Background(), order.ID, &models.UpdateOrderStatusRequest{
				Status: tt.to,
			})
			if tt.wantErr && !apperrors.IsValidation(err) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
		})
	}
}

func TestUpdateOrderStatus_CompletionConsumesStock(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeServiceOrder,
		Items: []models.OrderItemRequest{
			{Kind: pricing.ItemKindPart, ProductID: "prd_oil", Quantity: 3},
			serviceItem("Oil change labor", 1, "40.00"),
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	f.orders.orders[order.ID].Status = models.OrderStatusInProgress

	if _, err := f.svc.UpdateOrderStatus(context.Background(), order.ID, &models.UpdateOrderStatusRequest{
		Status: models.OrderStatusCompleted,
	}); err != nil {
		t.Fatalf("UpdateOrderStatus failed: %v", err)
	}

	if got := f.products.products["prd_oil"].CurrentStock; got != 7 {
		t.Errorf("Expected stock 7 after completion, got %d", got)
	}
	if len(f.products.movements) != 1 {
		t.Fatalf("Expected 1 stock movement, got %d", len(f.products.movements))
	}
	if f.products.movements[0].Type != models.StockMovementOut {
		t.Errorf("Expected out movement, got %s", f.products.movements[0].Type)
	}
}

func TestUpdateOrderStatus_InsufficientStockAbortsCompletion(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeServiceOrder,
		Items: []models.OrderItemRequest{
			{Kind: pricing.ItemKindPart, ProductID: "prd_oil", Quantity: 50},
		},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	f.orders.orders[order.ID].Status = models.OrderStatusInProgress

	_, err = f.svc.UpdateOrderStatus(context.Background(), order.ID, &models.UpdateOrderStatusRequest{
		Status: models.OrderStatusCompleted,
	})
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}

	if got := f.orders.orders[order.ID].Status; got != models.OrderStatusInProgress {
		t.Errorf("Expected status unchanged, got %s", got)
	}
}

func TestCancelOrder(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeBudget,
		Items:     []models.OrderItemRequest{serviceItem("Quote", 1, "10.00")},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	cancelled, err := f.svc.CancelOrder(context.Background(), order.ID, "client declined the quote")
	if err != nil {
		t.Fatalf("CancelOrder failed: %v", err)
	}
	if cancelled.Status != models.OrderStatusCancelled {
		t.Errorf("Expected status cancelled, got %s", cancelled.Status)
	}
	if len(f.publisher.cancelled) != 1 {
		t.Errorf("Expected 1 cancelled event, got %d", len(f.publisher.cancelled))
	}
}

func TestCancelOrder_RequiresReason(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CancelOrder(context.Background(), "ord_any", "  ")
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestCancelOrder_CompletedCannotBeCancelled(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeBudget,
		Items:     []models.OrderItemRequest{serviceItem("Quote", 1, "10.00")},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}
	f.orders.orders[order.ID].Status = models.OrderStatusCompleted

	_, err = f.svc.CancelOrder(context.Background(), order.ID, "too late")
	if !apperrors.IsValidation(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetOrder(context.Background(), "ord_missing")
	if !apperrors.IsNotFound(err) {
		t.Fatalf("Expected not found, got %v", err)
	}
}

func TestSetOrderPaymentStatus(t *testing.T) {
	f := newFixture(t)

	order, err := f.svc.CreateOrder(context.Background(), &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeServiceOrder,
		Items:     []models.OrderItemRequest{serviceItem("Repair", 1, "300.00")},
	})
	if err != nil {
		t.Fatalf("CreateOrder failed: %v", err)
	}

	if err := f.svc.SetOrderPaymentStatus(context.Background(), order.ID, models.PaymentStatusPaid); err != nil {
		t.Fatalf("SetOrderPaymentStatus failed: %v", err)
	}

	if got := f.orders.orders[order.ID].PaymentStatus; got != models.PaymentStatusPaid {
		t.Errorf("Expected payment status paid, got %s", got)
	}
}

func TestPreviewTotals(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.PreviewTotals(context.Background(), []models.OrderItemRequest{
		serviceItem("Diagnostics", 3, "33.335"),
	}, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("PreviewTotals failed: %v", err)
	}

	// Rounded once at the final sum: 3 * 33.335 = 100.005 -> 100.00.
	if got := result.Subtotal.String(); got != "100" {
		t.Errorf("Expected subtotal 100, got %s", got)
	}
}
