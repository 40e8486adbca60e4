// Package accounts owns the account lifecycle around the ledger: creation
// with a unique account number, ownership checks, renaming and deactivation.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/accountnumber"
	"github.com/hongminglow/ledger-be/internal/ledger"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds how many account numbers Create draws before
// giving up.
const DefaultMaxAttempts = 5

const maxNameLength = 100

var (
	// ErrAccountNotFound is shared with the ledger so callers match one value.
	ErrAccountNotFound = ledger.ErrAccountNotFound
	// ErrForbidden means the account belongs to another user.
	ErrForbidden = errors.New("account belongs to another user")
	// ErrDuplicateIdentifier means no free account number was found within
	// the attempt budget. The caller may retry later.
	ErrDuplicateIdentifier = errors.New("could not allocate a unique account number")
	// ErrInvalidAccount rejects malformed create or rename input.
	ErrInvalidAccount = errors.New("invalid account")
	// ErrInvalidAccountNumber rejects a number that fails the check digit.
	ErrInvalidAccountNumber = errors.New("invalid account number")
	// ErrDuplicateName means another account already uses the display name.
	ErrDuplicateName = storage.ErrDuplicateName
)

// NumberSource yields candidate account numbers.
type NumberSource interface {
	Generate() string
}

// Service implements account operations for an authenticated owner.
type Service struct {
	store       storage.AccountStore
	numbers     NumberSource
	maxAttempts int
	logger      *zap.Logger
	now         func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithNumberSource replaces the account number generator.
func WithNumberSource(src NumberSource) Option {
	return func(s *Service) { s.numbers = src }
}

// WithMaxAttempts sets the account number draw budget; values below 1 are ignored.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the source of creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService builds a Service over store.
func NewService(store storage.AccountStore, opts ...Option) *Service {
	s := &Service{
		store:       store,
		numbers:     accountnumber.NewGenerator(nil),
		maxAttempts: DefaultMaxAttempts,
		logger:      zap.NewNop(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateInput describes a new account.
type CreateInput struct {
	Name           string
	Category       models.Category
	Currency       models.Currency
	InitialBalance decimal.Decimal
}

func (in CreateInput) validate() error {
	if err := validateName(in.Name); err != nil {
		return err
	}
	if !in.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidAccount, in.Category)
	}
	if !in.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidAccount, in.Currency)
	}
	if in.InitialBalance.IsNegative() {
		return fmt.Errorf("%w: initial balance cannot be negative", ErrInvalidAccount)
	}
	if !in.InitialBalance.Equal(in.InitialBalance.Round(2)) {
		return fmt.Errorf("%w: initial balance has more than two decimal places", ErrInvalidAccount)
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAccount)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidAccount, maxNameLength)
	}
	return nil
}

// Create opens an account for ownerID. It draws account numbers until one is
// free, up to the attempt budget, and records a positive opening balance as
// the account's first credit entry so balance and ledger agree from the start.
func (s *Service) Create(ctx context.Context, ownerID int64, in CreateInput) (models.Account, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := in.validate(); err != nil {
		return models.Account{}, err
	}

	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		number := s.numbers.Generate()
		exists, err := s.store.AccountNumberExists(ctx, number)
		if err != nil {
			return models.Account{}, fmt.Errorf("check account number: %w", err)
		}
		if exists {
			s.logger.Debug("account number collision", zap.Int("attempt", attempt))
			continue
		}

		now := s.now().UTC()
		account := models.Account{
			ID:            uuid.New(),
			AccountNumber: number,
			OwnerID:       ownerID,
			Name:          in.Name,
			Category:      in.Category,
			Currency:      in.Currency,
			Balance:       in.InitialBalance,
			Status:        models.StatusActive,
			CreatedAt:     now,
		}
		var opening *models.Transaction
		if in.InitialBalance.IsPositive() {
			opening = &models.Transaction{
				ID:        uuid.New(),
				Direction: models.Credit,
				Amount:    in.InitialBalance,
				Memo:      "opening balance",
				CreatedAt: now,
			}
		}

		created, err := s.store.CreateAccount(ctx, account, opening)
		switch {
		case errors.Is(err, storage.ErrDuplicateNumber):
			// Lost a race with a concurrent create.
			s.logger.Debug("account number taken on insert", zap.Int("attempt", attempt))
			continue
		case err != nil:
			return models.Account{}, err
		}
		s.logger.Info("account created",
			zap.String("account_id", created.ID.String()),
			zap.Int64("owner_id", ownerID),
			zap.Int("attempts", attempt))
		return created, nil
	}

	s.logger.Warn("account number allocation exhausted", zap.Int("attempts", s.maxAttempts))
	return models.Account{}, ErrDuplicateIdentifier
}

// Get returns the account if ownerID owns it.
func (s *Service) Get(ctx context.Context, ownerID int64, id uuid.UUID) (models.Account, error) {
	account, err := s.store.GetAccount(ctx, id)
	return s.owned(ownerID, account, err)
}

// FindByNumber looks an account up by its account number, rejecting numbers
// whose check digit does not match before touching storage.
func (s *Service) FindByNumber(ctx context.Context, ownerID int64, number string) (models.Account, error) {
	if !accountnumber.IsValid(number) {
		return models.Account{}, ErrInvalidAccountNumber
	}
	account, err := s.store.GetAccountByNumber(ctx, number)
	return s.owned(ownerID, account, err)
}

// List returns every account ownerID owns, including deactivated ones.
func (s *Service) List(ctx context.Context, ownerID int64) ([]models.Account, error) {
	return s.store.ListAccountsByOwner(ctx, ownerID)
}

// Rename changes the display name of an owned account.
func (s *Service) Rename(ctx context.Context, ownerID int64, id uuid.UUID, name string) (models.Account, error) {
	name = strings.TrimSpace(name)
	if err := validateName(name); err != nil {
		return models.Account{}, err
	}
	if _, err := s.Get(ctx, ownerID, id); err != nil {
		return models.Account{}, err
	}
	account, err := s.store.RenameAccount(ctx, id, name)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, ErrAccountNotFound
	}
	return account, err
}

// Deactivate soft-deletes an owned account. Its history stays readable; new
// postings are refused.
func (s *Service) Deactivate(ctx context.Context, ownerID int64, id uuid.UUID) (models.Account, error) {
	account, err := s.Get(ctx, ownerID, id)
	if err != nil {
		return models.Account{}, err
	}
	if !account.Active() {
		return account, nil
	}
	account, err = s.store.SetAccountStatus(ctx, id, models.StatusDeactivated)
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, ErrAccountNotFound
	}
	if err == nil {
		s.logger.Info("account deactivated", zap.String("account_id", id.String()), zap.Int64("owner_id", ownerID))
	}
	return account, err
}

func (s *Service) owned(ownerID int64, account models.Account, err error) (models.Account, error) {
	if errors.Is(err, storage.ErrNotFound) {
		return models.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return models.Account{}, err
	}
	if account.OwnerID != ownerID {
		return models.Account{}, ErrForbidden
	}
	return account, nil
}
