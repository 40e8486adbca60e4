package dto

import (
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/shopspring/decimal"
)

// PostTransactionRequest is the body of a credit or debit posting.
type PostTransactionRequest struct {
	Direction string          `json:"direction" validate:"required,oneof=credit debit"`
	Amount    decimal.Decimal `json:"amount"`
	Memo      string          `json:"memo" validate:"max=255"`
}

// PostTransactionResponse carries the committed entry and the balance after it.
type PostTransactionResponse struct {
	Transaction models.Transaction `json:"transaction"`
	Balance     decimal.Decimal    `json:"balance"`
}

// TransactionPage is one page of an account's history, newest first.
type TransactionPage struct {
	Transactions []models.Transaction `json:"transactions"`
	Page         int                  `json:"page,omitempty"`
	PageSize     int                  `json:"page_size,omitempty"`
}
