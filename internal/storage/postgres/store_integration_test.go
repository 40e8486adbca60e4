package postgres

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hongminglow/ledger-be/internal/accountnumber"
	"github.com/hongminglow/ledger-be/internal/ledger"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
)

// TestStoreIntegration runs the ledger against a live Postgres.
func TestStoreIntegration(t *testing.T) {
	if os.Getenv("RUN_DB_INTEGRATION") != "true" {
		t.Skip("set RUN_DB_INTEGRATION=true to run this integration test")
	}
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	store, err := New(ctx, dbURL, Options{MaxConns: 8, Logger: zap.NewNop()})
	require.NoError(t, err)
	defer store.Close()

	suffix := time.Now().UnixNano()
	user, err := store.CreateUser(ctx, models.User{
		Username:     fmt.Sprintf("ledger_it_%d", suffix),
		Email:        fmt.Sprintf("ledger_it_%d@example.com", suffix),
		Phone:        "+15550000000",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	_, err = store.CreateUser(ctx, user)
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	opening := decimal.RequireFromString("1000.00")
	account, err := store.CreateAccount(ctx, models.Account{
		AccountNumber: accountnumber.Generate(),
		OwnerID:       user.ID,
		Name:          fmt.Sprintf("it-account-%d", suffix),
		Category:      models.CategoryPersonal,
		Currency:      models.CurrencyUSD,
		Balance:       opening,
		Status:        models.StatusActive,
	}, &models.Transaction{ID: uuid.New(), Direction: models.Credit, Amount: opening, Memo: "opening balance"})
	require.NoError(t, err)

	t.Run("duplicate number and name", func(t *testing.T) {
		_, err := store.CreateAccount(ctx, models.Account{
			AccountNumber: account.AccountNumber, OwnerID: user.ID, Name: uuid.NewString(),
			Category: models.CategoryPersonal, Currency: models.CurrencyUSD, Status: models.StatusActive,
		}, nil)
		assert.ErrorIs(t, err, storage.ErrDuplicateNumber)

		_, err = store.CreateAccount(ctx, models.Account{
			AccountNumber: accountnumber.Generate(), OwnerID: user.ID, Name: account.Name,
			Category: models.CategoryPersonal, Currency: models.CurrencyUSD, Status: models.StatusActive,
		}, nil)
		assert.ErrorIs(t, err, storage.ErrDuplicateName)
	})

	t.Run("concurrent postings serialize", func(t *testing.T) {
		engine := ledger.New(store)
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				_, err := engine.Post(ctx, ledger.PostRequest{AccountID: account.ID, Direction: models.Credit, Amount: decimal.NewFromInt(10)})
				assert.NoError(t, err)
			}()
			go func() {
				defer wg.Done()
				_, err := engine.Post(ctx, ledger.PostRequest{AccountID: account.ID, Direction: models.Debit, Amount: decimal.NewFromInt(5)})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := store.GetAccount(ctx, account.ID)
		require.NoError(t, err)
		assert.True(t, got.Balance.Equal(decimal.NewFromInt(1100)), "balance %s", got.Balance)

		entries, err := store.ListEntries(ctx, account.ID, storage.EntryQuery{})
		require.NoError(t, err)
		assert.Len(t, entries, 41)
		sum := decimal.Zero
		for _, e := range entries {
			sum = sum.Add(e.Signed())
		}
		assert.True(t, sum.Equal(got.Balance))
	})

	t.Run("overdraft leaves nothing behind", func(t *testing.T) {
		engine := ledger.New(store)
		_, err := engine.Post(ctx, ledger.PostRequest{AccountID: account.ID, Direction: models.Debit, Amount: decimal.NewFromInt(5000)})
		assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)

		entries, err := store.ListEntries(ctx, account.ID, storage.EntryQuery{Limit: 1})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.NotEqual(t, 0, entries[0].Amount.Cmp(decimal.NewFromInt(5000)))
	})

	t.Run("cursor resumes after entry", func(t *testing.T) {
		first, err := store.ListEntries(ctx, account.ID, storage.EntryQuery{Limit: 1})
		require.NoError(t, err)
		require.Len(t, first, 1)

		_, err = ledger.New(store).Post(ctx, ledger.PostRequest{AccountID: account.ID, Direction: models.Credit, Amount: decimal.NewFromInt(1)})
		require.NoError(t, err)

		rest, err := store.ListEntries(ctx, account.ID, storage.EntryQuery{AfterEntry: first[0].ID})
		require.NoError(t, err)
		assert.Len(t, rest, 40)
		for _, e := range rest {
			assert.NotEqual(t, first[0].ID, e.ID)
		}
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := store.GetAccount(ctx, uuid.New())
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}
