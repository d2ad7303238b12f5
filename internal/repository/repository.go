package repository

import (
	"context"

	"github.com/oficinapro/workshop-service/internal/models"
)

// OrderRepository persists orders and their line items. Line items live in a
// child table keyed by order id and are loaded with the order.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, notes string) (*models.Order, error)
	UpdatePaymentStatus(ctx context.Context, id string, status models.PaymentStatus) error
	List(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error)
}

// ClientRepository persists workshop clients.
type ClientRepository interface {
	Create(ctx context.Context, client *models.Client) error
	GetByID(ctx context.Context, id string) (*models.Client, error)
	Update(ctx context.Context, client *models.Client) error
	List(ctx context.Context, limit, offset int) ([]*models.Client, int, error)
}

// VehicleRepository persists client vehicles.
type VehicleRepository interface {
	Create(ctx context.Context, vehicle *models.Vehicle) error
	GetByID(ctx context.Context, id string) (*models.Vehicle, error)
	Update(ctx context.Context, vehicle *models.Vehicle) error
	ListByClientID(ctx context.Context, clientID string) ([]*models.Vehicle, error)
	List(ctx context.Context, limit, offset int) ([]*models.Vehicle, int, error)
}

// ProductRepository persists stocked parts and their stock movements.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	Update(ctx context.Context, product *models.Product) error
	List(ctx context.Context, limit, offset int) ([]*models.Product, int, error)
	ListLowStock(ctx context.Context) ([]*models.Product, error)
	AdjustStock(ctx context.Context, movement *models.StockMovement) error
}

// OrderCache defines caching operations for orders.
type OrderCache interface {
	Get(ctx context.Context, id string) (*models.Order, error)
	Set(ctx context.Context, order *models.Order) error
	Delete(ctx context.Context, id string) error
	GetByClientID(ctx context.Context, clientID string) ([]*models.Order, error)
	SetByClientID(ctx context.Context, clientID string, orders []*models.Order) error
	InvalidateByClientID(ctx context.Context, clientID string) error
}

var (
	_ OrderRepository   = (*PostgresOrderRepository)(nil)
	_ ClientRepository  = (*PostgresClientRepository)(nil)
	_ VehicleRepository = (*PostgresVehicleRepository)(nil)
	_ ProductRepository = (*PostgresProductRepository)(nil)
	_ OrderCache        = (*RedisOrderCache)(nil)
)
