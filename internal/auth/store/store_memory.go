package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"smartsave/internal/auth/models"
	"smartsave/pkg/platform/sentinel"
)

// InMemoryUserStore is the test double for UserStore.
type InMemoryUserStore struct {
	mu     sync.RWMutex
	users  map[int64]*models.User
	nextID int64
}

func NewInMemory() *InMemoryUserStore {
	return &InMemoryUserStore{users: make(map[int64]*models.User), nextID: 1}
}

func (s *InMemoryUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, user.Email) {
			return sentinel.ErrConflict
		}
	}

	user.ID = s.nextID
	s.nextID++
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	copied := *user
	s.users[user.ID] = &copied
	return nil
}

func (s *InMemoryUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemoryUserStore) FindByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (s *InMemoryUserStore) RecordLogin(_ context.Context, id int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return sentinel.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}
