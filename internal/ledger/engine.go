// Package ledger applies credits and debits to account balances. Every
// posting writes one ledger entry and the matching balance change as a single
// unit: either both are stored or neither is, so the balance always equals the
// signed sum of the account's entries.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/events"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine posts transactions and reads account history.
type Engine struct {
	store     storage.LedgerStore
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the source of entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithPublisher sets where TransactionPosted events go after commit.
func WithPublisher(p events.Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// New returns an engine over store.
func New(store storage.LedgerStore, opts ...Option) *Engine {
	e := &Engine{
		store:     store,
		publisher: events.Noop{},
		logger:    zap.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// PostRequest asks for one credit or debit against an account whose
// ownership the caller has already checked.
type PostRequest struct {
	AccountID uuid.UUID
	Direction models.Direction
	Amount    decimal.Decimal
	Memo      string
}

// Validate checks the request shape: known direction, positive amount with at
// most two decimal places, memo within bounds.
func (r PostRequest) Validate() error {
	if r.AccountID == uuid.Nil {
		return fmt.Errorf("%w: account id is required", ErrInvalidTransaction)
	}
	if !r.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidTransaction, r.Direction)
	}
	if !r.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be greater than zero", ErrInvalidTransaction)
	}
	if !r.Amount.Equal(r.Amount.Round(2)) {
		return fmt.Errorf("%w: amount has more than two decimal places", ErrInvalidTransaction)
	}
	if utf8.RuneCountInString(r.Memo) > models.MaxMemoLength {
		return fmt.Errorf("%w: memo exceeds %d characters", ErrInvalidTransaction, models.MaxMemoLength)
	}
	return nil
}

// Result is the committed entry and the balance right after it.
type Result struct {
	Entry   models.Transaction `json:"transaction"`
	Balance decimal.Decimal    `json:"balance"`
}

// Apply returns the balance after moving amount in direction, or
// ErrInsufficientFunds if a debit would take the balance below zero.
func Apply(balance decimal.Decimal, direction models.Direction, amount decimal.Decimal) (decimal.Decimal, error) {
	if direction == models.Debit {
		if amount.GreaterThan(balance) {
			return balance, ErrInsufficientFunds
		}
		return balance.Sub(amount), nil
	}
	return balance.Add(amount), nil
}

// Post records the entry and adjusts the balance atomically. Concurrent posts
// to the same account are serialized by the store; other accounts are not
// blocked.
func (e *Engine) Post(ctx context.Context, req PostRequest) (res Result, err error) {
	start := time.Now()
	defer func() {
		postingsTotal.WithLabelValues(string(req.Direction), outcomeLabel(err)).Inc()
		postingDuration.Observe(time.Since(start).Seconds())
	}()

	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	var account models.Account
	err = e.store.WithAccount(ctx, req.AccountID, func(ctx context.Context, tx storage.LedgerTx) error {
		account = tx.Account()
		if !account.Active() {
			return ErrAccountInactive
		}
		balance, err := Apply(account.Balance, req.Direction, req.Amount)
		if err != nil {
			return err
		}
		entry, err := tx.InsertEntry(ctx, models.Transaction{
			ID:        uuid.New(),
			AccountID: account.ID,
			Direction: req.Direction,
			Amount:    req.Amount,
			Memo:      req.Memo,
			CreatedAt: e.now().UTC(),
		})
		if err != nil {
			return fmt.Errorf("%w: insert entry: %w", ErrStorageFailure, err)
		}
		if err := tx.UpdateBalance(ctx, balance); err != nil {
			return fmt.Errorf("%w: update balance: %w", ErrStorageFailure, err)
		}
		res = Result{Entry: entry, Balance: balance}
		return nil
	})
	if err != nil {
		return Result{}, e.classify(req, err)
	}

	e.publish(ctx, account, res)
	return res, nil
}

func (e *Engine) classify(req PostRequest, err error) error {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return ErrAccountNotFound
	case errors.Is(err, ErrInsufficientFunds), errors.Is(err, ErrAccountInactive), errors.Is(err, ErrStorageFailure):
		return err
	default:
		e.logger.Error("ledger posting failed",
			zap.String("account_id", req.AccountID.String()),
			zap.String("direction", string(req.Direction)),
			zap.Error(err))
		return fmt.Errorf("%w: %w", ErrStorageFailure, err)
	}
}

// publish notifies downstream consumers. The posting has already committed, so
// a delivery failure is logged and counted but not returned.
func (e *Engine) publish(ctx context.Context, account models.Account, res Result) {
	err := e.publisher.Publish(ctx, events.TransactionPosted{
		TransactionID: res.Entry.ID,
		AccountID:     account.ID,
		AccountNumber: account.AccountNumber,
		Direction:     res.Entry.Direction,
		Amount:        res.Entry.Amount,
		Balance:       res.Balance,
		OccurredAt:    res.Entry.CreatedAt,
	})
	if err != nil {
		publishFailures.Inc()
		e.logger.Warn("publish transaction event failed",
			zap.String("transaction_id", res.Entry.ID.String()),
			zap.Error(err))
	}
}
