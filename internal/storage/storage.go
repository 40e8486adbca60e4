package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/shopspring/decimal"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

var (
	// ErrDuplicateNumber is a uniqueness conflict on the account number.
	ErrDuplicateNumber = errors.New("account number already exists")
	// ErrDuplicateName is a uniqueness conflict on the account display name.
	ErrDuplicateName = errors.New("account name already exists")
)

// UserStore captures persistence operations needed by handlers.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	FindByUsernameOrEmail(ctx context.Context, identifier string) (models.User, error)
}

// AccountStore persists accounts. CreateAccount writes the account and, when
// opening is non-nil, its opening ledger entry in one commit.
type AccountStore interface {
	CreateAccount(ctx context.Context, account models.Account, opening *models.Transaction) (models.Account, error)
	AccountNumberExists(ctx context.Context, number string) (bool, error)
	GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error)
	GetAccountByNumber(ctx context.Context, number string) (models.Account, error)
	ListAccountsByOwner(ctx context.Context, ownerID int64) ([]models.Account, error)
	RenameAccount(ctx context.Context, id uuid.UUID, name string) (models.Account, error)
	SetAccountStatus(ctx context.Context, id uuid.UUID, status models.AccountStatus) (models.Account, error)
}

// LedgerTx is the view of one account inside an exclusive unit of work.
// Writes are visible to the store only if the enclosing unit returns nil.
type LedgerTx interface {
	Account() models.Account
	InsertEntry(ctx context.Context, entry models.Transaction) (models.Transaction, error)
	UpdateBalance(ctx context.Context, balance decimal.Decimal) error
}

// EntryQuery selects ledger entries created in [Since, Before). Zero times are
// unbounded. Limit <= 0 returns every match. A non-zero AfterEntry resumes the
// newest-first order strictly after that entry, so rows committed meanwhile
// do not shift the walk the way Offset does.
type EntryQuery struct {
	Since      time.Time
	Before     time.Time
	AfterEntry uuid.UUID
	Offset     int
	Limit      int
}

// LedgerStore persists ledger entries and serializes postings per account.
type LedgerStore interface {
	// WithAccount runs fn while holding the account exclusively. ErrNotFound
	// is returned when the account does not exist.
	WithAccount(ctx context.Context, accountID uuid.UUID, fn func(ctx context.Context, tx LedgerTx) error) error
	// ListEntries returns entries newest first.
	ListEntries(ctx context.Context, accountID uuid.UUID, q EntryQuery) ([]models.Transaction, error)
}
