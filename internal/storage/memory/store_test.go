package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
)

func seedAccount(t *testing.T, s *Store, number, name string) models.Account {
	t.Helper()
	a, err := s.CreateAccount(context.Background(), models.Account{
		AccountNumber: number,
		OwnerID:       1,
		Name:          name,
		Category:      models.CategoryPersonal,
		Currency:      models.CurrencyUSD,
		Balance:       decimal.Zero,
		Status:        models.StatusActive,
	}, nil)
	require.NoError(t, err)
	return a
}

func TestCreateAccountUniqueness(t *testing.T) {
	s := New()
	seedAccount(t, s, "1000000000009", "first")

	_, err := s.CreateAccount(context.Background(), models.Account{AccountNumber: "1000000000009", Name: "other"}, nil)
	assert.ErrorIs(t, err, storage.ErrDuplicateNumber)

	_, err = s.CreateAccount(context.Background(), models.Account{AccountNumber: "1000000000017", Name: "first"}, nil)
	assert.ErrorIs(t, err, storage.ErrDuplicateName)

	exists, err := s.AccountNumberExists(context.Background(), "1000000000009")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestWithAccountDiscardsOnError(t *testing.T) {
	s := New()
	a := seedAccount(t, s, "1000000000009", "first")
	boom := errors.New("boom")

	err := s.WithAccount(context.Background(), a.ID, func(ctx context.Context, tx storage.LedgerTx) error {
		_, err := tx.InsertEntry(ctx, models.Transaction{Direction: models.Credit, Amount: decimal.NewFromInt(5), CreatedAt: time.Now()})
		require.NoError(t, err)
		require.NoError(t, tx.UpdateBalance(ctx, decimal.NewFromInt(5)))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.GetAccount(context.Background(), a.ID)
	require.NoError(t, err)
	assert.True(t, got.Balance.IsZero())
	entries, err := s.ListEntries(context.Background(), a.ID, storage.EntryQuery{})
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWithAccountUnknown(t *testing.T) {
	s := New()
	err := s.WithAccount(context.Background(), uuid.New(), func(context.Context, storage.LedgerTx) error {
		t.Fatal("fn must not run for an unknown account")
		return nil
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestListEntriesWindowAndOrder(t *testing.T) {
	s := New()
	a := seedAccount(t, s, "1000000000009", "first")
	day := func(d int) time.Time { return time.Date(2024, 5, d, 12, 0, 0, 0, time.UTC) }

	// Two entries on the same instant fall back to insertion order.
	for _, at := range []time.Time{day(1), day(2), day(2), day(3)} {
		err := s.WithAccount(context.Background(), a.ID, func(ctx context.Context, tx storage.LedgerTx) error {
			_, err := tx.InsertEntry(ctx, models.Transaction{Direction: models.Credit, Amount: decimal.NewFromInt(1), CreatedAt: at})
			return err
		})
		require.NoError(t, err)
	}

	all, err := s.ListEntries(context.Background(), a.ID, storage.EntryQuery{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, day(3), all[0].CreatedAt)
	assert.Equal(t, day(1), all[3].CreatedAt)

	window, err := s.ListEntries(context.Background(), a.ID, storage.EntryQuery{Since: day(2), Before: day(3)})
	require.NoError(t, err)
	require.Len(t, window, 2)
	assert.Equal(t, all[1].ID, window[0].ID)
	assert.Equal(t, all[2].ID, window[1].ID)

	paged, err := s.ListEntries(context.Background(), a.ID, storage.EntryQuery{Offset: 3, Limit: 2})
	require.NoError(t, err)
	require.Len(t, paged, 1)
	assert.Equal(t, all[3].ID, paged[0].ID)

	past, err := s.ListEntries(context.Background(), a.ID, storage.EntryQuery{Offset: 10, Limit: 2})
	require.NoError(t, err)
	assert.Empty(t, past)
}

func TestRenameAndStatus(t *testing.T) {
	s := New()
	a := seedAccount(t, s, "1000000000009", "first")
	seedAccount(t, s, "1000000000017", "second")

	_, err := s.RenameAccount(context.Background(), a.ID, "second")
	assert.ErrorIs(t, err, storage.ErrDuplicateName)

	renamed, err := s.RenameAccount(context.Background(), a.ID, "primary")
	require.NoError(t, err)
	assert.Equal(t, "primary", renamed.Name)

	// The old name is free again.
	seedAccount(t, s, "1000000000025", "first")

	closed, err := s.SetAccountStatus(context.Background(), a.ID, models.StatusDeactivated)
	require.NoError(t, err)
	assert.False(t, closed.Active())

	_, err = s.SetAccountStatus(context.Background(), uuid.New(), models.StatusDeactivated)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestWithAccountKeepsConcurrentRename(t *testing.T) {
	s := New()
	a := seedAccount(t, s, "1000000000009", "old")
	ctx := context.Background()

	err := s.WithAccount(ctx, a.ID, func(ctx context.Context, tx storage.LedgerTx) error {
		_, err := s.RenameAccount(ctx, a.ID, "new")
		require.NoError(t, err)
		if _, err := tx.InsertEntry(ctx, models.Transaction{Direction: models.Credit, Amount: decimal.NewFromInt(7), CreatedAt: time.Now()}); err != nil {
			return err
		}
		return tx.UpdateBalance(ctx, decimal.NewFromInt(7))
	})
	require.NoError(t, err)

	got, err := s.GetAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.Name)
	assert.True(t, got.Balance.Equal(decimal.NewFromInt(7)))

	_, err = s.CreateAccount(ctx, models.Account{AccountNumber: "1000000000017", Name: "new"}, nil)
	assert.ErrorIs(t, err, storage.ErrDuplicateName)
	seedAccount(t, s, "1000000000025", "old")
}

func TestListEntriesAfterEntry(t *testing.T) {
	s := New()
	a := seedAccount(t, s, "1000000000009", "first")
	ctx := context.Background()
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	post := func() {
		err := s.WithAccount(ctx, a.ID, func(ctx context.Context, tx storage.LedgerTx) error {
			_, err := tx.InsertEntry(ctx, models.Transaction{Direction: models.Credit, Amount: decimal.NewFromInt(1), CreatedAt: at})
			return err
		})
		require.NoError(t, err)
	}
	for i := 0; i < 3; i++ {
		post()
	}

	first, err := s.ListEntries(ctx, a.ID, storage.EntryQuery{Limit: 1})
	require.NoError(t, err)
	require.Len(t, first, 1)

	// A newer entry lands between pages; the cursor is unaffected.
	post()

	rest, err := s.ListEntries(ctx, a.ID, storage.EntryQuery{AfterEntry: first[0].ID})
	require.NoError(t, err)
	require.Len(t, rest, 2)
	for _, e := range rest {
		assert.NotEqual(t, first[0].ID, e.ID)
	}

	gone, err := s.ListEntries(ctx, a.ID, storage.EntryQuery{AfterEntry: uuid.New()})
	require.NoError(t, err)
	assert.Empty(t, gone)
}
