package models

import "time"

// Client is a customer of the workshop.
type Client struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	CPFCNPJ   string     `json:"cpf_cnpj,omitempty"`
	Address   string     `json:"address,omitempty"`
	City      string     `json:"city,omitempty"`
	State     string     `json:"state,omitempty"`
	ZipCode   string     `json:"zip_code,omitempty"`
	BirthDate *time.Time `json:"birth_date,omitempty"`
	Notes     string     `json:"notes,omitempty"`
	IsActive  bool       `json:"is_active"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateClientRequest is the payload for registering a client.
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"omitempty,email"`
	Phone   string `json:"phone"`
	CPFCNPJ string `json:"cpf_cnpj"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zip_code"`
	Notes   string `json:"notes"`
}

// UpdateClientRequest is a partial client edit.
type UpdateClientRequest struct {
	Name     *string `json:"name"`
	Email    *string `json:"email" binding:"omitempty,email"`
	Phone    *string `json:"phone"`
	CPFCNPJ  *string `json:"cpf_cnpj"`
	Address  *string `json:"address"`
	City     *string `json:"city"`
	State    *string `json:"state"`
	ZipCode  *string `json:"zip_code"`
	Notes    *string `json:"notes"`
	IsActive *bool   `json:"is_active"`
}
