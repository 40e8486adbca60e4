package ledger

import (
	"context"
	"fmt"
	"iter"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
)

// MaxPageSize is the largest page List will return.
const MaxPageSize = 100

// Filter narrows an account's history. From and To are inclusive and compare
// the calendar date only; each is read in its own location and matched
// against UTC entry dates. PageSize 0 returns the whole filtered history.
type Filter struct {
	From     time.Time
	To       time.Time
	Page     int
	PageSize int
}

func (f Filter) query() (storage.EntryQuery, error) {
	if f.PageSize < 0 || f.PageSize > MaxPageSize {
		return storage.EntryQuery{}, fmt.Errorf("%w: page size must be between 1 and %d", ErrInvalidFilter, MaxPageSize)
	}
	if f.Page < 0 {
		return storage.EntryQuery{}, fmt.Errorf("%w: page must be positive", ErrInvalidFilter)
	}

	var q storage.EntryQuery
	if !f.From.IsZero() {
		q.Since = startOfDay(f.From)
	}
	if !f.To.IsZero() {
		q.Before = startOfDay(f.To).AddDate(0, 0, 1)
	}
	if !q.Since.IsZero() && !q.Before.IsZero() && !q.Since.Before(q.Before) {
		return storage.EntryQuery{}, fmt.Errorf("%w: from date is after to date", ErrInvalidFilter)
	}
	if f.PageSize > 0 {
		page := max(f.Page, 1)
		q.Offset = (page - 1) * f.PageSize
		q.Limit = f.PageSize
	}
	return q, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// List returns one page of the account's entries, newest first.
func (e *Engine) List(ctx context.Context, accountID uuid.UUID, f Filter) ([]models.Transaction, error) {
	q, err := f.query()
	if err != nil {
		return nil, err
	}
	entries, err := e.store.ListEntries(ctx, accountID, q)
	if err != nil {
		return nil, fmt.Errorf("%w: list entries: %w", ErrStorageFailure, err)
	}
	return entries, nil
}

// Entries walks the filtered history lazily, newest first, fetching pages of
// f.PageSize (MaxPageSize when unset) as the caller ranges. f.Page is
// ignored; every range starts again from the newest entry. Each page resumes
// after the last entry yielded, so postings that commit mid-walk neither
// repeat nor skip older entries.
func (e *Engine) Entries(ctx context.Context, accountID uuid.UUID, f Filter) iter.Seq2[models.Transaction, error] {
	size := f.PageSize
	if size == 0 {
		size = MaxPageSize
	}
	return func(yield func(models.Transaction, error) bool) {
		q, err := Filter{From: f.From, To: f.To, PageSize: size}.query()
		if err != nil {
			yield(models.Transaction{}, err)
			return
		}
		for {
			batch, err := e.store.ListEntries(ctx, accountID, q)
			if err != nil {
				yield(models.Transaction{}, fmt.Errorf("%w: list entries: %w", ErrStorageFailure, err))
				return
			}
			for _, entry := range batch {
				if !yield(entry, nil) {
					return
				}
			}
			if len(batch) < size {
				return
			}
			q.AfterEntry = batch[len(batch)-1].ID
		}
	}
}
