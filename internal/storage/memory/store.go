// Package memory is a process-local implementation of the storage
// interfaces, used when no DATABASE_URL is configured and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/ledger-be/internal/models"
	"github.com/hongminglow/ledger-be/internal/storage"
)

var (
	_ storage.UserStore    = (*Store)(nil)
	_ storage.AccountStore = (*Store)(nil)
	_ storage.LedgerStore  = (*Store)(nil)
)

type storedEntry struct {
	seq   int64
	entry models.Transaction
}

// Store keeps users, accounts and ledger entries in maps. mu guards the maps;
// the per-account locks serialize postings without blocking other accounts.
type Store struct {
	mu       sync.RWMutex
	nextUser int64
	users    map[int64]models.User
	accounts map[uuid.UUID]models.Account
	numbers  map[string]uuid.UUID
	names    map[string]uuid.UUID
	entries  map[uuid.UUID][]storedEntry
	seq      int64

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex

	now func() time.Time
}

// New creates an empty store.
func New() *Store {
	return &Store{
		users:    make(map[int64]models.User),
		accounts: make(map[uuid.UUID]models.Account),
		numbers:  make(map[string]uuid.UUID),
		names:    make(map[string]uuid.UUID),
		entries:  make(map[uuid.UUID][]storedEntry),
		locks:    make(map[uuid.UUID]*sync.Mutex),
		now:      time.Now,
	}
}

// CreateUser inserts a new user; username and email are unique.
func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Username == user.Username || u.Email == user.Email {
			return models.User{}, storage.ErrAlreadyExists
		}
	}
	s.nextUser++
	user.ID = s.nextUser
	user.CreatedAt = s.now().UTC()
	s.users[user.ID] = user
	return user, nil
}

// FindByUsername fetches a user by username.
func (s *Store) FindByUsername(_ context.Context, username string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == username })
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

// FindByUsernameOrEmail fetches the user matching the identifier as username or email.
func (s *Store) FindByUsernameOrEmail(_ context.Context, identifier string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Username == identifier || u.Email == identifier })
}

func (s *Store) findUser(match func(models.User) bool) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}
