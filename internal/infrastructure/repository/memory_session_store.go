package repository

import (
	"context"
	"sync"
	"time"

	"ims-storefront-bridge/internal/domain"
	"ims-storefront-bridge/internal/ports"
)

// InMemorySessionStore is a single-process session store for local runs without Redis
type InMemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]domain.InstallSession
	now      func() time.Time
}

// NewInMemorySessionStore creates an empty in-memory session store
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		sessions: make(map[string]domain.InstallSession),
		now:      time.Now,
	}
}

// Save stores the session, replacing any previous session of the shop
func (s *InMemorySessionStore) Save(ctx context.Context, session *domain.InstallSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep()
	s.sessions[session.Shop] = *session
	return nil
}

// Consume returns and removes the session of a shop. Expired sessions are not returned.
func (s *InMemorySessionStore) Consume(ctx context.Context, shop string) (*domain.InstallSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[shop]
	if !ok {
		return nil, nil
	}
	delete(s.sessions, shop)
	if session.Expired(s.now()) {
		return nil, nil
	}
	return &session, nil
}

// sweep drops expired sessions; callers hold mu
func (s *InMemorySessionStore) sweep() {
	now := s.now()
	for shop, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, shop)
		}
	}
}

var _ ports.SessionStore = (*InMemorySessionStore)(nil)
