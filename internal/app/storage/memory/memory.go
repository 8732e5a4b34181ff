// Package memory provides an in-memory implementation of the storage
// interfaces. It is safe for concurrent use and is primarily intended for
// tests and local development.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/itemvault/itemvault/internal/app/domain/item"
	"github.com/itemvault/itemvault/internal/app/domain/user"
	"github.com/itemvault/itemvault/internal/app/storage"
)

// Store holds all records behind a single lock.
type Store struct {
	mu              sync.RWMutex
	users           map[string]user.User
	usersByEmail    map[string]string
	usersByUsername map[string]string
	items           map[string]item.Item
}

var _ storage.UserStore = (*Store)(nil)
var _ storage.ItemStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		users:           make(map[string]user.User),
		usersByEmail:    make(map[string]string),
		usersByUsername: make(map[string]string),
		items:           make(map[string]item.Item),
	}
}

// UserStore implementation --------------------------------------------------

func (s *Store) CreateUser(_ context.Context, u user.User) (user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = time.Now().UTC()

	s.users[u.ID] = u
	s.usersByEmail[normalize(u.Email)] = u.ID
	s.usersByUsername[normalize(u.Username)] = u.ID
	return u, nil
}

func (s *Store) GetUser(_ context.Context, id string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByEmail[normalize(email)]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByUsername[normalize(username)]
	if !ok {
		return user.User{}, storage.ErrNotFound
	}
	return s.users[id], nil
}

// ItemStore implementation --------------------------------------------------

func (s *Store) CreateItem(_ context.Context, it item.Item) (item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	it.CreatedAt = now
	it.UpdatedAt = now

	s.items[it.ID] = it
	return it, nil
}

func (s *Store) UpdateItem(_ context.Context, it item.Item) (item.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.items[it.ID]
	if !ok {
		return item.Item{}, storage.ErrNotFound
	}

	// Owner and creation time are immutable.
	it.UserID = original.UserID
	it.CreatedAt = original.CreatedAt
	it.UpdatedAt = time.Now().UTC()

	s.items[it.ID] = it
	return it, nil
}

func (s *Store) GetItem(_ context.Context, id string) (item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	it, ok := s.items[id]
	if !ok {
		return item.Item{}, storage.ErrNotFound
	}
	return it, nil
}

func (s *Store) ListItems(_ context.Context, userID string) ([]item.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]item.Item, 0)
	for _, it := range s.items {
		if it.UserID == userID {
			result = append(result, it)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func normalize(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
