package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/jackc/pgx/v5"
)

const selectAccount = `
	SELECT id, account_number, owner_id, name, category, currency, balance, status, created_at, updated_at
	FROM accounts`

// CreateAccount inserts the account and its optional opening entry in one transaction.
func (s *Store) CreateAccount(ctx context.Context, account models.Account, opening *models.Transaction) (models.Account, error) {
	const query = `
		INSERT INTO accounts (id, account_number, owner_id, name, category, currency, balance, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, account_number, owner_id, name, category, currency, balance, status, created_at, updated_at`
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}

	var created models.Account
	err := s.withTx(ctx, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, query,
			account.ID, account.AccountNumber, account.OwnerID, account.Name,
			account.Category, account.Currency, account.Balance, account.Status)
		var err error
		if created, err = scanAccount(row); err != nil {
			return err
		}
		if opening == nil {
			return nil
		}
		entry := *opening
		entry.AccountID = created.ID
		_, err = insertEntry(ctx, tx, entry)
		return err
	})
	if err != nil {
		return models.Account{}, mapError(err)
	}
	return created, nil
}

// AccountNumberExists reports whether number is already assigned.
func (s *Store) AccountNumberExists(ctx context.Context, number string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM accounts WHERE account_number = $1)`, number).Scan(&exists)
	return exists, err
}

// GetAccount fetches an account by id.
func (s *Store) GetAccount(ctx context.Context, id uuid.UUID) (models.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, selectAccount+` WHERE id = $1`, id))
}

// GetAccountByNumber fetches an account by its account number.
func (s *Store) GetAccountByNumber(ctx context.Context, number string) (models.Account, error) {
	return scanAccount(s.pool.QueryRow(ctx, selectAccount+` WHERE account_number = $1`, number))
}

// ListAccountsByOwner returns the owner's accounts, oldest first.
func (s *Store) ListAccountsByOwner(ctx context.Context, ownerID int64) ([]models.Account, error) {
	rows, err := s.pool.Query(ctx, selectAccount+` WHERE owner_id = $1 ORDER BY created_at, account_number`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Account, 0)
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// RenameAccount changes the display name.
func (s *Store) RenameAccount(ctx context.Context, id uuid.UUID, name string) (models.Account, error) {
	const query = `
		UPDATE accounts SET name = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, account_number, owner_id, name, category, currency, balance, status, created_at, updated_at`
	return scanAccount(s.pool.QueryRow(ctx, query, id, name))
}

// SetAccountStatus moves the account to the given lifecycle state.
func (s *Store) SetAccountStatus(ctx context.Context, id uuid.UUID, status models.AccountStatus) (models.Account, error) {
	const query = `
		UPDATE accounts SET status = $2, updated_at = NOW() WHERE id = $1
		RETURNING id, account_number, owner_id, name, category, currency, balance, status, created_at, updated_at`
	return scanAccount(s.pool.QueryRow(ctx, query, id, status))
}

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.AccountNumber, &a.OwnerID, &a.Name, &a.Category, &a.Currency,
		&a.Balance, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return models.Account{}, mapError(err)
	}
	return a, nil
}
