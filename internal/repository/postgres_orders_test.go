package repository

import (
	"strings"
	"testing"
	"time"

	"github.com/oficinapro/workshop-service/internal/models"
)

func TestGenerateOrderID(t *testing.T) {
	id := GenerateOrderID()
	if !strings.HasPrefix(id, "ord_") {
		t.Errorf("Expected ord_ prefix, got %s", id)
	}
	if id == GenerateOrderID() {
		t.Error("Expected unique ids")
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		orderType  models.OrderType
		wantPrefix string
	}{
		{"service order", models.OrderTypeServiceOrder, "OS-20240315-"},
		{"budget", models.OrderTypeBudget, "ORC-20240315-"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			number := GenerateOrderNumber(tt.orderType, now)
			if !strings.HasPrefix(number, tt.wantPrefix) {
				t.Errorf("Expected prefix %s, got %s", tt.wantPrefix, number)
			}
			if got := len(number); got != len(tt.wantPrefix)+8 {
				t.Errorf("Expected %d chars, got %d (%s)", len(tt.wantPrefix)+8, got, number)
			}
		})
	}
}

func TestNullString(t *testing.T) {
	if ns := nullString(""); ns.Valid {
		t.Error("Expected empty string to be invalid")
	}
	if ns := nullString("x"); !ns.Valid || ns.String != "x" {
		t.Errorf("Expected valid 'x', got %+v", ns)
	}
}

func TestPostgresOrderRepository_Integration(t *testing.T) {
	t.Skip("Integration test - requires database")
}
