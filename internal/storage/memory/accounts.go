package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
)

// CreateAccount inserts the account and its optional opening entry together.
func (s *Store) CreateAccount(_ context.Context, account models.Account, opening *models.Transaction) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.numbers[account.AccountNumber]; taken {
		return models.Account{}, storage.ErrDuplicateNumber
	}
	if _, taken := s.names[account.Name]; taken {
		return models.Account{}, storage.ErrDuplicateName
	}
	if account.ID == uuid.Nil {
		account.ID = uuid.New()
	}
	now := s.now().UTC()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = account.CreatedAt

	s.accounts[account.ID] = account
	s.numbers[account.AccountNumber] = account.ID
	s.names[account.Name] = account.ID
	if opening != nil {
		entry := *opening
		entry.AccountID = account.ID
		if entry.ID == uuid.Nil {
			entry.ID = uuid.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = account.CreatedAt
		}
		s.appendEntryLocked(entry)
	}
	return account, nil
}

// AccountNumberExists reports whether number is already assigned.
func (s *Store) AccountNumberExists(_ context.Context, number string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.numbers[number]
	return ok, nil
}

// GetAccount fetches an account by id.
func (s *Store) GetAccount(_ context.Context, id uuid.UUID) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return a, nil
}

// GetAccountByNumber fetches an account by its account number.
func (s *Store) GetAccountByNumber(_ context.Context, number string) (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.numbers[number]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	return s.accounts[id], nil
}

// ListAccountsByOwner returns the owner's accounts, oldest first.
func (s *Store) ListAccountsByOwner(_ context.Context, ownerID int64) ([]models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Account, 0)
	for _, a := range s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].AccountNumber < out[j].AccountNumber
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// RenameAccount changes the display name, keeping names unique.
func (s *Store) RenameAccount(_ context.Context, id uuid.UUID, name string) (models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	if a.Name == name {
		return a, nil
	}
	if _, taken := s.names[name]; taken {
		return models.Account{}, storage.ErrDuplicateName
	}
	delete(s.names, a.Name)
	a.Name = name
	a.UpdatedAt = s.now().UTC()
	s.names[name] = id
	s.accounts[id] = a
	return a, nil
}

// SetAccountStatus moves the account to the given lifecycle state.
func (s *Store) SetAccountStatus(_ context.Context, id uuid.UUID, status models.AccountStatus) (models.Account, error) {
	// Take the posting lock so a deactivation cannot interleave with a post.
	lock := s.accountLock(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[id]
	if !ok {
		return models.Account{}, storage.ErrNotFound
	}
	a.Status = status
	a.UpdatedAt = s.now().UTC()
	s.accounts[id] = a
	return a, nil
}
