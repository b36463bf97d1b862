// Package user persists operator accounts.
package user

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"confcrm/internal/auth/models"
	"confcrm/pkg/platform/sentinel"
)

// MemoryStore is the in-memory UserStore used in tests and local development.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]models.User
}

func NewMemory() *MemoryStore {
	return &MemoryStore{users: make(map[uuid.UUID]models.User)}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return models.User{}, sentinel.ErrNotFound
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return models.User{}, sentinel.ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) Create(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[u.ID]; exists {
		return sentinel.ErrConflict
	}
	for _, existing := range s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return sentinel.ErrConflict
		}
	}
	s.users[u.ID] = u
	return nil
}
