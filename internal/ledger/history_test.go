package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func amounts(entries []models.Transaction) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Amount.StringFixed(2)
	}
	return out
}

func seededEngine(t *testing.T) (*Engine, models.Account) {
	t.Helper()
	store := memory.New()
	acct := newAccount(t, store, "history")
	engine := New(store, WithClock(fixedClock(
		day(2025, 1, 1).Add(9*time.Hour),
		day(2025, 2, 1).Add(23*time.Hour+59*time.Minute),
		day(2025, 3, 1).Add(30*time.Minute),
	)))
	for _, amt := range []string{"10", "20", "30"} {
		_, err := engine.Post(context.Background(), PostRequest{AccountID: acct.ID, Direction: models.Credit, Amount: dec(amt)})
		require.NoError(t, err)
	}
	return engine, acct
}

func TestListFromDate(t *testing.T) {
	engine, acct := seededEngine(t)
	got, err := engine.List(context.Background(), acct.ID, Filter{From: day(2025, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"30.00", "20.00"}, amounts(got))
}

func TestListDateBoundsIgnoreTimeOfDay(t *testing.T) {
	engine, acct := seededEngine(t)

	// The Feb entry is at 23:59; a To bound at midnight still includes it.
	got, err := engine.List(context.Background(), acct.ID, Filter{To: day(2025, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, []string{"20.00", "10.00"}, amounts(got))

	got, err = engine.List(context.Background(), acct.ID, Filter{
		From: day(2025, 2, 1).Add(22 * time.Hour),
		To:   day(2025, 2, 1),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"20.00"}, amounts(got))
}

func TestListWholeHistoryNewestFirst(t *testing.T) {
	engine, acct := seededEngine(t)
	got, err := engine.List(context.Background(), acct.ID, Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"30.00", "20.00", "10.00"}, amounts(got))
}

func TestListPagination(t *testing.T) {
	engine, acct := seededEngine(t)
	ctx := context.Background()

	first, err := engine.List(ctx, acct.ID, Filter{PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"30.00", "20.00"}, amounts(first))

	second, err := engine.List(ctx, acct.ID, Filter{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"10.00"}, amounts(second))

	third, err := engine.List(ctx, acct.ID, Filter{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, third)
}

func TestListRejectsBadFilter(t *testing.T) {
	engine, acct := seededEngine(t)
	ctx := context.Background()
	for _, f := range []Filter{
		{PageSize: 101},
		{PageSize: -1},
		{Page: -1, PageSize: 10},
		{From: day(2025, 3, 2), To: day(2025, 3, 1)},
	} {
		_, err := engine.List(ctx, acct.ID, f)
		assert.ErrorIs(t, err, ErrInvalidFilter, "filter %+v", f)
	}
}

func TestEntriesIsLazyAndRestartable(t *testing.T) {
	engine, acct := seededEngine(t)
	seq := engine.Entries(context.Background(), acct.ID, Filter{PageSize: 1})

	collect := func() []models.Transaction {
		var out []models.Transaction
		for e, err := range seq {
			require.NoError(t, err)
			out = append(out, e)
		}
		return out
	}
	assert.Equal(t, []string{"30.00", "20.00", "10.00"}, amounts(collect()))
	assert.Equal(t, []string{"30.00", "20.00", "10.00"}, amounts(collect()))

	var firstOnly []models.Transaction
	for e := range seq {
		firstOnly = append(firstOnly, e)
		break
	}
	assert.Equal(t, []string{"30.00"}, amounts(firstOnly))
}

func TestEntriesReportsFilterError(t *testing.T) {
	engine, acct := seededEngine(t)
	var errs []error
	for _, err := range engine.Entries(context.Background(), acct.ID, Filter{PageSize: 500}) {
		errs = append(errs, err)
	}
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrInvalidFilter)
}

func TestEntriesStableUnderConcurrentPosts(t *testing.T) {
	engine, acct := seededEngine(t)

	seen := map[string]int{}
	var order []string
	posted := false
	for e, err := range engine.Entries(context.Background(), acct.ID, Filter{PageSize: 1}) {
		require.NoError(t, err)
		seen[e.ID.String()]++
		order = append(order, e.Amount.StringFixed(2))
		if !posted {
			posted = true
			_, err := engine.Post(context.Background(), PostRequest{AccountID: acct.ID, Direction: models.Credit, Amount: dec("40")})
			require.NoError(t, err)
		}
	}

	assert.Equal(t, []string{"30.00", "20.00", "10.00"}, order)
	for id, n := range seen {
		assert.Equal(t, 1, n, "entry %s yielded more than once", id)
	}

	// A fresh walk picks up the newer entry.
	var again []models.Transaction
	for e, err := range engine.Entries(context.Background(), acct.ID, Filter{PageSize: 2}) {
		require.NoError(t, err)
		again = append(again, e)
	}
	assert.Equal(t, []string{"40.00", "30.00", "20.00", "10.00"}, amounts(again))
}
