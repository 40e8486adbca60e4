// Package events publishes ledger notifications to downstream consumers.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/shopspring/decimal"
)

// TransactionPosted is emitted after a ledger entry and its balance change commit.
type TransactionPosted struct {
	TransactionID uuid.UUID        `json:"transaction_id"`
	AccountID     uuid.UUID        `json:"account_id"`
	AccountNumber string           `json:"account_number"`
	Direction     models.Direction `json:"direction"`
	Amount        decimal.Decimal  `json:"amount"`
	Balance       decimal.Decimal  `json:"balance"`
	OccurredAt    time.Time        `json:"occurred_at"`
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event TransactionPosted) error
	Close() error
}

// Noop discards every event.
type Noop struct{}

func (Noop) Publish(context.Context, TransactionPosted) error { return nil }
func (Noop) Close() error                                     { return nil }
