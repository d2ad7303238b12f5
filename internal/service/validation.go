package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/models"
)

var maxPercentage = decimal.NewFromInt(100)

// ValidateCreateOrderRequest validates an order creation request at the
// boundary. The pricing engine re-checks item values defensively; this layer
// produces the field-level messages the UI shows.
func ValidateCreateOrderRequest(req *models.CreateOrderRequest) error {
	if req.ClientID == "" {
		return apperrors.NewValidationError("client_id", "client ID is required")
	}
	if req.VehicleID == "" {
		return apperrors.NewValidationError("vehicle_id", "vehicle ID is required")
	}

	switch req.Type {
	case models.OrderTypeBudget, models.OrderTypeServiceOrder:
	default:
		return apperrors.NewValidationError("type", "must be budget or service_order")
	}

	if len(req.Items) == 0 {
		return apperrors.NewValidationError("items", "at least one item is required")
	}
	for i := range req.Items {
		if err := validateOrderItem(&req.Items[i]); err != nil {
			return err
		}
	}

	if err := validateDiscounts(req.DiscountAmount, req.DiscountPercentage); err != nil {
		return err
	}

	if req.PaymentMethod != "" {
		if err := validatePaymentMethod(req.PaymentMethod); err != nil {
			return err
		}
	}

	return nil
}

func validateOrderItem(item *models.OrderItemRequest) error {
	if !item.Kind.Valid() {
		return apperrors.NewValidationError("items", "item kind must be service or part")
	}

	// Description may be blank only when it can be sourced from a product.
	if strings.TrimSpace(item.Description) == "" && item.ProductID == "" {
		return apperrors.NewValidationError("items", "item description is required")
	}

	if item.Quantity < 1 {
		return apperrors.NewValidationError("items", "item quantity must be at least 1")
	}

	if item.UnitPrice.IsNegative() {
		return apperrors.NewValidationError("items", "item unit price cannot be negative")
	}

	return nil
}

func validateDiscounts(amount, percentage decimal.Decimal) error {
	if amount.IsNegative() {
		return apperrors.NewValidationError("discount_amount", "cannot be negative")
	}
	if percentage.IsNegative() || percentage.GreaterThan(maxPercentage) {
		return apperrors.NewValidationError("discount_percentage", "must be between 0 and 100")
	}
	return nil
}

func validatePaymentMethod(method models.PaymentMethod) error {
	switch method {
	case models.PaymentMethodCash,
		models.PaymentMethodCreditCard,
		models.PaymentMethodDebitCard,
		models.PaymentMethodPix,
		models.PaymentMethodBankTransfer,
		models.PaymentMethodCheck:
		return nil
	}
	return apperrors.NewValidationError("payment_method", "invalid payment method")
}

// ValidateUpdateOrderStatusRequest validates a status update request.
func ValidateUpdateOrderStatusRequest(req *models.UpdateOrderStatusRequest) error {
	if req.Status == "" {
		return apperrors.NewValidationError("status", "status is required")
	}

	switch req.Status {
	case models.OrderStatusOpen,
		models.OrderStatusApproved,
		models.OrderStatusInProgress,
		models.OrderStatusCompleted,
		models.OrderStatusCancelled:
	default:
		return apperrors.NewValidationError("status", "invalid order status")
	}

	return nil
}

// ValidateOrderListFilter validates a list filter, capping the page size.
func ValidateOrderListFilter(filter *models.OrderListFilter) error {
	if filter.Limit < 0 {
		return apperrors.NewValidationError("limit", "limit cannot be negative")
	}
	if filter.Offset < 0 {
		return apperrors.NewValidationError("offset", "offset cannot be negative")
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	return nil
}

// ValidateCancellationReason validates an order cancellation reason.
func ValidateCancellationReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return apperrors.NewValidationError("reason", "cancellation reason is required")
	}
	if len(reason) > 500 {
		return apperrors.NewValidationError("reason", "cancellation reason too long (max 500 characters)")
	}
	return nil
}
