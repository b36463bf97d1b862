// Package session persists login sessions.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"confcrm/internal/auth/models"
	"confcrm/pkg/platform/sentinel"
)

// MemoryStore is the in-memory SessionStore used in tests and local
// development.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]models.Session
}

func NewMemory() *MemoryStore {
	return &MemoryStore{sessions: make(map[uuid.UUID]models.Session)}
}

func (s *MemoryStore) Create(_ context.Context, sess models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[sess.ID]; exists {
		return sentinel.ErrConflict
	}
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Get(_ context.Context, id uuid.UUID) (models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok {
		return models.Session{}, sentinel.ErrNotFound
	}
	return sess, nil
}

func (s *MemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}
