package fetcher

import (
	"sync"

	"github.com/google/uuid"
)

// Registry maps session IDs to their Fetcher. Fetchers are created when a
// session first browses and dropped when the session ends.
type Registry struct {
	mu       sync.Mutex
	fetchers map[uuid.UUID]*Fetcher
	factory  func() *Fetcher
}

// NewRegistry creates a Registry; factory constructs a Fetcher for a new
// session.
func NewRegistry(factory func() *Fetcher) *Registry {
	return &Registry{
		fetchers: make(map[uuid.UUID]*Fetcher),
		factory:  factory,
	}
}

// Get returns the session's Fetcher, creating it on first use.
func (r *Registry) Get(sessionID uuid.UUID) *Fetcher {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.fetchers[sessionID]
	if !ok {
		f = r.factory()
		r.fetchers[sessionID] = f
	}
	return f
}

// Drop removes the session's Fetcher; safe to call for unknown sessions.
func (r *Registry) Drop(sessionID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.fetchers, sessionID)
}

// Len reports the number of live fetchers; used by tests and diagnostics.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fetchers)
}
