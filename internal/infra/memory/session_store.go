package memory

import (
	"context"
	"sync"

	"feedbacker-service/internal/app"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*app.PlayerSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*app.PlayerSession),
	}
}

func (s *SessionStore) Acquire(ctx context.Context, deviceID string, create func(context.Context) (*app.PlayerSession, error)) (*app.PlayerSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[deviceID]
	if !ok {
		var err error
		if session, err = create(ctx); err != nil {
			return nil, err
		}
		s.sessions[deviceID] = session
	}
	session.Attach()
	return session, nil
}

func (s *SessionStore) Get(deviceID string) (*app.PlayerSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[deviceID]
	return session, ok
}

func (s *SessionStore) Release(deviceID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[deviceID]
	if !ok {
		return
	}
	if session.Detach() {
		delete(s.sessions, deviceID)
	}
}
