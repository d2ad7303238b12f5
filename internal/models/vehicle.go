package models

import (
	"fmt"
	"time"
)

// Vehicle belongs to a client and is the subject of orders.
type Vehicle struct {
	ID             string    `json:"id"`
	ClientID       string    `json:"client_id"`
	Plate          string    `json:"plate"`
	Chassis        string    `json:"chassis,omitempty"`
	Year           int       `json:"year"`
	Manufacturer   string    `json:"manufacturer"`
	Model          string    `json:"model"`
	Color          string    `json:"color,omitempty"`
	CurrentKM      int       `json:"current_km"`
	AdditionalInfo string    `json:"additional_info,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// FullName is the display name used on orders and listings.
func (v *Vehicle) FullName() string {
	return fmt.Sprintf("%s %s (%d)", v.Manufacturer, v.Model, v.Year)
}

// CreateVehicleRequest is the payload for registering a vehicle.
type CreateVehicleRequest struct {
	ClientID       string `json:"client_id" binding:"required"`
	Plate          string `json:"plate" binding:"required"`
	Chassis        string `json:"chassis"`
	Year           int    `json:"year" binding:"required"`
	Manufacturer   string `json:"manufacturer" binding:"required"`
	Model          string `json:"model" binding:"required"`
	Color          string `json:"color"`
	CurrentKM      int    `json:"current_km"`
	AdditionalInfo string `json:"additional_info"`
}

// UpdateVehicleRequest is a partial vehicle edit.
type UpdateVehicleRequest struct {
	Plate          *string `json:"plate"`
	Chassis        *string `json:"chassis"`
	Year           *int    `json:"year"`
	Manufacturer   *string `json:"manufacturer"`
	Model          *string `json:"model"`
	Color          *string `json:"color"`
	CurrentKM      *int    `json:"current_km"`
	AdditionalInfo *string `json:"additional_info"`
	IsActive       *bool   `json:"is_active"`
}
