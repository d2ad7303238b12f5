package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product is a stocked part sold on orders.
type Product struct {
	ID           string          `json:"id"`
	Code         string          `json:"code,omitempty"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	Brand        string          `json:"brand,omitempty"`
	Unit         string          `json:"unit"`
	CostPrice    decimal.Decimal `json:"cost_price"`
	SalePrice    decimal.Decimal `json:"sale_price"`
	CurrentStock int             `json:"current_stock"`
	MinStock     int             `json:"min_stock"`
	MaxStock     int             `json:"max_stock"`
	Location     string          `json:"location,omitempty"`
	IsActive     bool            `json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// IsLowStock reports whether the product is at or below its minimum stock.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStock
}

// StockMovementType is the direction of a stock movement.
type StockMovementType string

const (
	StockMovementIn  StockMovementType = "in"
	StockMovementOut StockMovementType = "out"
)

// StockMovement records one inventory change, usually tied to an order.
type StockMovement struct {
	ID        string            `json:"id"`
	ProductID string            `json:"product_id"`
	OrderID   string            `json:"order_id,omitempty"`
	Type      StockMovementType `json:"type"`
	Quantity  int               `json:"quantity"`
	Reason    string            `json:"reason,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// CreateProductRequest is the payload for registering a product.
type CreateProductRequest struct {
	Code        string          `json:"code"`
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Brand       string          `json:"brand"`
	Unit        string          `json:"unit"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	CurrentStock int            `json:"current_stock"`
	MinStock    int             `json:"min_stock"`
	MaxStock    int             `json:"max_stock"`
	Location    string          `json:"location"`
}

// UpdateProductRequest is a partial product edit. Stock is adjusted through
// movements, not through this request.
type UpdateProductRequest struct {
	Code        *string          `json:"code"`
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Brand       *string          `json:"brand"`
	Unit        *string          `json:"unit"`
	CostPrice   *decimal.Decimal `json:"cost_price"`
	SalePrice   *decimal.Decimal `json:"sale_price"`
	MinStock    *int             `json:"min_stock"`
	MaxStock    *int             `json:"max_stock"`
	Location    *string          `json:"location"`
	IsActive    *bool            `json:"is_active"`
}
