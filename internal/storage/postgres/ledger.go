package postgres

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxConflictRetries = 3

type ledgerTx struct {
	tx      pgx.Tx
	account models.Account
}

func (t *ledgerTx) Account() models.Account { return t.account }

func (t *ledgerTx) InsertEntry(ctx context.Context, entry models.Transaction) (models.Transaction, error) {
	entry.AccountID = t.account.ID
	return insertEntry(ctx, t.tx, entry)
}

func (t *ledgerTx) UpdateBalance(ctx context.Context, balance decimal.Decimal) error {
	_, err := t.tx.Exec(ctx, `UPDATE accounts SET balance = $2, updated_at = NOW() WHERE id = $1`, t.account.ID, balance)
	return err
}

// WithAccount locks the account row with SELECT ... FOR UPDATE and runs fn in
// the same transaction. Serialization failures and deadlocks are retried.
func (s *Store) WithAccount(ctx context.Context, accountID uuid.UUID, fn func(ctx context.Context, tx storage.LedgerTx) error) error {
	operation := func() error {
		err := s.withTx(ctx, func(tx pgx.Tx) error {
			account, err := scanAccount(tx.QueryRow(ctx, selectAccount+` WHERE id = $1 FOR UPDATE`, accountID))
			if err != nil {
				return err
			}
			return fn(ctx, &ledgerTx{tx: tx, account: account})
		})
		if err == nil {
			return nil
		}
		if retryable(err) {
			s.logger.Warn("ledger transaction conflict, retrying", zap.String("account_id", accountID.String()), zap.Error(err))
			return err
		}
		return backoff.Permanent(err)
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond
	return mapError(backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, maxConflictRetries), ctx)))
}

// ListEntries returns entries newest first.
func (s *Store) ListEntries(ctx context.Context, accountID uuid.UUID, q storage.EntryQuery) ([]models.Transaction, error) {
	const query = `
		SELECT id, account_id, direction, amount, memo, created_at
		FROM transactions
		WHERE account_id = $1
			AND ($2::timestamptz IS NULL OR created_at >= $2)
			AND ($3::timestamptz IS NULL OR created_at < $3)
			AND ($6::uuid IS NULL OR (created_at, seq) < (
				SELECT c.created_at, c.seq FROM transactions c WHERE c.id = $6 AND c.account_id = $1))
		ORDER BY created_at DESC, seq DESC
		OFFSET $4
		LIMIT $5`

	var since, before *time.Time
	if !q.Since.IsZero() {
		since = &q.Since
	}
	if !q.Before.IsZero() {
		before = &q.Before
	}
	var limit *int
	if q.Limit > 0 {
		limit = &q.Limit
	}
	var after *uuid.UUID
	if q.AfterEntry != uuid.Nil {
		after = &q.AfterEntry
	}

	rows, err := s.pool.Query(ctx, query, accountID, since, before, max(q.Offset, 0), limit, after)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Transaction, 0)
	for rows.Next() {
		var e models.Transaction
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Direction, &e.Amount, &e.Memo, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func insertEntry(ctx context.Context, tx pgx.Tx, entry models.Transaction) (models.Transaction, error) {
	const query = `
		INSERT INTO transactions (id, account_id, direction, amount, memo, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, account_id, direction, amount, memo, created_at`
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	var out models.Transaction
	err := tx.QueryRow(ctx, query, entry.ID, entry.AccountID, entry.Direction, entry.Amount, entry.Memo, entry.CreatedAt).
		Scan(&out.ID, &out.AccountID, &out.Direction, &out.Amount, &out.Memo, &out.CreatedAt)
	return out, err
}
