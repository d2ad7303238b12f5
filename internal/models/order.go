package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oficinapro/workshop-service/internal/pricing"
)

// OrderType distinguishes a budget (quote) from a committed service order.
type OrderType string

const (
	OrderTypeBudget       OrderType = "budget"
	OrderTypeServiceOrder OrderType = "service_order"
)

// OrderStatus is the workflow state of an order.
type OrderStatus string

const (
	OrderStatusOpen       OrderStatus = "open"
	OrderStatusApproved   OrderStatus = "approved"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// PaymentStatus tracks how much of the order has been settled.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusPartial   PaymentStatus = "partial"
	PaymentStatusPaid      PaymentStatus = "paid"
	PaymentStatusCancelled PaymentStatus = "cancelled"
)

// PaymentMethod is how the client intends to pay.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCreditCard   PaymentMethod = "credit_card"
	PaymentMethodDebitCard    PaymentMethod = "debit_card"
	PaymentMethodPix          PaymentMethod = "pix"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCheck        PaymentMethod = "check"
)

// Order is a repair-shop budget or service order. The money fields
// (Subtotal, DiscountAmount, DiscountPercentage, TotalAmount) are always
// derived by the pricing engine on write; externally supplied totals are
// never trusted.
type Order struct {
	ID                 string             `json:"id"`
	Number             string             `json:"number"`
	ClientID           string             `json:"client_id"`
	VehicleID          string             `json:"vehicle_id"`
	Type               OrderType          `json:"type"`
	Status             OrderStatus        `json:"status"`
	CurrentKM          *int               `json:"current_km,omitempty"`
	Complaint          string             `json:"complaint,omitempty"`
	Diagnosis          string             `json:"diagnosis,omitempty"`
	Observations       string             `json:"observations,omitempty"`
	Items              []pricing.LineItem `json:"items"`
	Subtotal           decimal.Decimal    `json:"subtotal"`
	DiscountAmount     decimal.Decimal    `json:"discount_amount"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
	TotalAmount        decimal.Decimal    `json:"total_amount"`
	PaymentMethod      PaymentMethod      `json:"payment_method,omitempty"`
	PaymentStatus      PaymentStatus      `json:"payment_status"`
	StartDate          *time.Time         `json:"start_date,omitempty"`
	CompletionDate     *time.Time         `json:"completion_date,omitempty"`
	DeliveryDate       *time.Time         `json:"delivery_date,omitempty"`
	ValidityDate       *time.Time         `json:"validity_date,omitempty"`
	CreatedAt          time.Time          `json:"created_at"`
	UpdatedAt          time.Time          `json:"updated_at"`
}

// CanCancel reports whether the order can still be cancelled.
func (o *Order) CanCancel() bool {
	switch o.Status {
	case OrderStatusOpen, OrderStatusApproved, OrderStatusInProgress:
		return true
	}
	return false
}

// IsEditable reports whether items and discounts can still change.
func (o *Order) IsEditable() bool {
	return o.Status == OrderStatusOpen || o.Status == OrderStatusApproved
}

// IsBudget reports whether the order is a quote rather than a committed job.
func (o *Order) IsBudget() bool {
	return o.Type == OrderTypeBudget
}

// OrderItemRequest is one line item as submitted by the client.
type OrderItemRequest struct {
	Kind           pricing.ItemKind `json:"kind" binding:"required"`
	Description    string           `json:"description"`
	AdditionalInfo string           `json:"additional_info"`
	ProductID      string           `json:"product_id"`
	Quantity       int              `json:"quantity" binding:"required,min=1"`
	UnitPrice      decimal.Decimal  `json:"unit_price"`
}

// CreateOrderRequest is the payload for creating an order. Totals are not
// accepted from the client; they are always recomputed.
type CreateOrderRequest struct {
	ClientID           string             `json:"client_id" binding:"required"`
	VehicleID          string             `json:"vehicle_id" binding:"required"`
	Type               OrderType          `json:"type" binding:"required"`
	CurrentKM          *int               `json:"current_km"`
	Complaint          string             `json:"complaint"`
	Diagnosis          string             `json:"diagnosis"`
	Observations       string             `json:"observations"`
	Items              []OrderItemRequest `json:"items" binding:"required"`
	DiscountAmount     decimal.Decimal    `json:"discount_amount"`
	DiscountPercentage decimal.Decimal    `json:"discount_percentage"`
	PaymentMethod      PaymentMethod      `json:"payment_method"`
}

// UpdateOrderRequest is a partial order edit. Nil fields are left unchanged;
// supplying Items replaces the whole item set and re-prices the order.
type UpdateOrderRequest struct {
	CurrentKM          *int                `json:"current_km"`
	Complaint          *string             `json:"complaint"`
	Diagnosis          *string             `json:"diagnosis"`
	Observations       *string             `json:"observations"`
	Items              *[]OrderItemRequest `json:"items"`
	DiscountAmount     *decimal.Decimal    `json:"discount_amount"`
	DiscountPercentage *decimal.Decimal    `json:"discount_percentage"`
	PaymentMethod      *PaymentMethod      `json:"payment_method"`
}

// UpdateOrderStatusRequest changes the workflow state of an order.
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
	Notes  string      `json:"notes"`
}

// OrderListFilter selects orders for listing.
type OrderListFilter struct {
	ClientID  string
	VehicleID string
	Status    *OrderStatus
	Type      *OrderType
	Limit     int
	Offset    int
}
