// Package memory provides in-memory storage adapters, used in tests and as
// a fallback when no persistent store is configured.
package memory

import (
	"context"
	"sync"

	"github.com/catalyst-match/identity/internal/core/domain"
	"github.com/catalyst-match/identity/internal/core/ports/driven"
)

// Ensure SessionStore implements the interface.
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory implementation of driven.SessionStore.
type SessionStore struct {
	mu      sync.RWMutex
	session *domain.Session
}

// NewSessionStore creates an empty in-memory session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Load returns the stored session, or domain.ErrNoSession.
func (s *SessionStore) Load(_ context.Context) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, domain.ErrNoSession
	}
	session := *s.session
	return &session, nil
}

// Save stores the session, replacing any previous one.
func (s *SessionStore) Save(_ context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	return nil
}

// Clear removes the stored session.
func (s *SessionStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	return nil
}
