package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
	"github.com/shopspring/decimal"
)

func (s *Store) accountLock(id uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	if _, exists := s.locks[id]; !exists {
		s.locks[id] = &sync.Mutex{}
	}
	return s.locks[id]
}

type ledgerTx struct {
	account models.Account
	staged  []models.Transaction
	balance *decimal.Decimal
}

func (t *ledgerTx) Account() models.Account { return t.account }

func (t *ledgerTx) InsertEntry(_ context.Context, entry models.Transaction) (models.Transaction, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.AccountID = t.account.ID
	t.staged = append(t.staged, entry)
	return entry, nil
}

func (t *ledgerTx) UpdateBalance(_ context.Context, balance decimal.Decimal) error {
	t.balance = &balance
	return nil
}

// WithAccount runs fn under the account's lock. Staged entries and the new
// balance are applied together, and only when fn returns nil.
func (s *Store) WithAccount(ctx context.Context, accountID uuid.UUID, fn func(ctx context.Context, tx storage.LedgerTx) error) error {
	lock := s.accountLock(accountID)
	lock.Lock()
	defer lock.Unlock()

	account, err := s.GetAccount(ctx, accountID)
	if err != nil {
		return err
	}
	tx := &ledgerTx{account: account}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range tx.staged {
		s.appendEntryLocked(e)
	}
	if tx.balance != nil {
		// Re-read: a rename may have landed while fn ran.
		current := s.accounts[accountID]
		current.Balance = *tx.balance
		current.UpdatedAt = s.now().UTC()
		s.accounts[accountID] = current
	}
	return nil
}

// newerFirst is the list order: created_at descending, then insertion order
// descending.
func newerFirst(a, b storedEntry) bool {
	if a.entry.CreatedAt.Equal(b.entry.CreatedAt) {
		return a.seq > b.seq
	}
	return a.entry.CreatedAt.After(b.entry.CreatedAt)
}

func (s *Store) appendEntryLocked(e models.Transaction) {
	s.seq++
	s.entries[e.AccountID] = append(s.entries[e.AccountID], storedEntry{seq: s.seq, entry: e})
}

// ListEntries returns the account's entries newest first.
func (s *Store) ListEntries(_ context.Context, accountID uuid.UUID, q storage.EntryQuery) ([]models.Transaction, error) {
	s.mu.RLock()
	all := s.entries[accountID]
	var cursor *storedEntry
	if q.AfterEntry != uuid.Nil {
		for i := range all {
			if all[i].entry.ID == q.AfterEntry {
				cursor = &all[i]
				break
			}
		}
		if cursor == nil {
			s.mu.RUnlock()
			return []models.Transaction{}, nil
		}
	}
	matched := make([]storedEntry, 0, len(all))
	for _, se := range all {
		if !q.Since.IsZero() && se.entry.CreatedAt.Before(q.Since) {
			continue
		}
		if !q.Before.IsZero() && !se.entry.CreatedAt.Before(q.Before) {
			continue
		}
		if cursor != nil && !newerFirst(*cursor, se) {
			continue
		}
		matched = append(matched, se)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return newerFirst(matched[i], matched[j]) })

	if q.Offset > 0 {
		if q.Offset >= len(matched) {
			return []models.Transaction{}, nil
		}
		matched = matched[q.Offset:]
	}
	if q.Limit > 0 && q.Limit < len(matched) {
		matched = matched[:q.Limit]
	}
	out := make([]models.Transaction, len(matched))
	for i, se := range matched {
		out[i] = se.entry
	}
	return out, nil
}
