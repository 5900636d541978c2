package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"feedbacker-service/internal/app"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Live sessions stay in a local map so their state machines keep running in
// process; Redis only carries a liveness marker per connected device, which
// lets operators count connected players across instances.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.Mutex
	sessions map[string]*app.PlayerSession
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
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
		// best-effort liveness marker
		_ = s.client.Set(ctx, s.key(deviceID), session.State().SessionID, s.ttl).Err()
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
		_ = s.client.Del(context.Background(), s.key(deviceID)).Err()
	}
}

func (s *SessionStore) key(deviceID string) string {
	return "feedbacker:session:" + deviceID
}
