package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/oficinapro/workshop-service/internal/apperrors"
	"github.com/oficinapro/workshop-service/internal/models"
	"github.com/oficinapro/workshop-service/internal/pricing"
)

func validCreateRequest() *models.CreateOrderRequest {
	return &models.CreateOrderRequest{
		ClientID:  "cli_1",
		VehicleID: "veh_1",
		Type:      models.OrderTypeServiceOrder,
		Items: []models.OrderItemRequest{
			{Kind: pricing.ItemKindService, Description: "Oil change", Quantity: 1, UnitPrice: decimal.RequireFromString("80.00")},
		},
	}
}

func TestValidateCreateOrderRequest(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*models.CreateOrderRequest)
		wantField string
	}{
		{"valid", func(r *models.CreateOrderRequest) {}, ""},
		{"missing client", func(r *models.CreateOrderRequest) { r.ClientID = "" }, "client_id"},
		{"missing vehicle", func(r *models.CreateOrderRequest) { r.VehicleID = "" }, "vehicle_id"},
		{"bad type", func(r *models.CreateOrderRequest) { r.Type = "invoice" }, "type"},
		{"no items", func(r *models.CreateOrderRequest) { r.Items = nil }, "items"},
		{"bad item kind", func(r *models.CreateOrderRequest) { r.Items[0].Kind = "labor" }, "items"},
		{"blank description no product", func(r *models.CreateOrderRequest) { r.Items[0].Description = "  " }, "items"},
		{"zero quantity", func(r *models.CreateOrderRequest) { r.Items[0].Quantity = 0 }, "items"},
		{"negative price", func(r *models.CreateOrderRequest) {
			r.Items[0].UnitPrice = decimal.RequireFromString("-1")
		}, "items"},
		{"negative discount amount", func(r *models.CreateOrderRequest) {
			r.DiscountAmount = decimal.RequireFromString("-5")
		}, "discount_amount"},
		{"percentage over 100", func(r *models.CreateOrderRequest) {
			r.DiscountPercentage = decimal.RequireFromString("100.01")
		}, "discount_percentage"},
		{"negative percentage", func(r *models.CreateOrderRequest) {
			r.DiscountPercentage = decimal.RequireFromString("-1")
		}, "discount_percentage"},
		{"bad payment method", func(r *models.CreateOrderRequest) { r.PaymentMethod = "crypto" }, "payment_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(req)

			err := ValidateCreateOrderRequest(req)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("Expected no error, got %v", err)
				}
				return
			}

			var ve *apperrors.ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("Expected validation error, got %v", err)
			}
			if ve.Field != tt.wantField {
				t.Errorf("Expected field %q, got %q", tt.wantField, ve.Field)
			}
		})
	}
}

func TestValidateCreateOrderRequest_BlankDescriptionWithProduct(t *testing.T) {
	req := validCreateRequest()
	req.Items[0].Description = ""
	req.Items[0].Kind = pricing.ItemKindPart
	req.Items[0].ProductID = "prd_1"

	if err := ValidateCreateOrderRequest(req); err != nil {
		t.Fatalf("Expected no error when description sourced from product, got %v", err)
	}
}

func TestValidatePaymentMethods(t *testing.T) {
	valid := []models.PaymentMethod{
		models.PaymentMethodCash,
		models.PaymentMethodCreditCard,
		models.PaymentMethodDebitCard,
		models.PaymentMethodPix,
		models.PaymentMethodBankTransfer,
		models.PaymentMethodCheck,
	}
	for _, m := range valid {
		if err := validatePaymentMethod(m); err != nil {
			t.Errorf("Expected %s to be valid, got %v", m, err)
		}
	}

	if err := validatePaymentMethod("barter"); err == nil {
		t.Error("Expected error for unknown payment method")
	}
}

func TestValidateUpdateOrderStatusRequest(t *testing.T) {
	if err := ValidateUpdateOrderStatusRequest(&models.UpdateOrderStatusRequest{}); err == nil {
		t.Error("Expected error for empty status")
	}
	if err := ValidateUpdateOrderStatusRequest(&models.UpdateOrderStatusRequest{Status: "shipped"}); err == nil {
		t.Error("Expected error for unknown status")
	}
	if err := ValidateUpdateOrderStatusRequest(&models.UpdateOrderStatusRequest{Status: models.OrderStatusApproved}); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}

func TestValidateOrderListFilter(t *testing.T) {
	filter := &models.OrderListFilter{Limit: 500}
	if err := ValidateOrderListFilter(filter); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if filter.Limit != 100 {
		t.Errorf("Expected limit capped at 100, got %d", filter.Limit)
	}

	if err := ValidateOrderListFilter(&models.OrderListFilter{Limit: -1}); err == nil {
		t.Error("Expected error for negative limit")
	}
	if err := ValidateOrderListFilter(&models.OrderListFilter{Offset: -1}); err == nil {
		t.Error("Expected error for negative offset")
	}
}

func TestValidateCancellationReason(t *testing.T) {
	if err := ValidateCancellationReason(""); err == nil {
		t.Error("Expected error for empty reason")
	}
	if err := ValidateCancellationReason(strings.Repeat("x", 501)); err == nil {
		t.Error("Expected error for oversized reason")
	}
	if err := ValidateCancellationReason("client declined"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
}
