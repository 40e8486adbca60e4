package dto

import "github.com/shopspring/decimal"

// CreateAccountRequest opens an account; a missing initial_balance means zero.
type CreateAccountRequest struct {
	Name           string           `json:"name" validate:"required,max=100"`
	Category       string           `json:"category" validate:"required,oneof=personal business"`
	Currency       string           `json:"currency" validate:"required,oneof=USD EUR GBP INR"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
}

// RenameAccountRequest changes the display name.
type RenameAccountRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}
