package memory

import (
	"context"
	"sync"
	"time"

	"feedbacker-service/internal/domain"
)

// EventStore is an in-process implementation of app.Store. A single mutex
// serializes transactions; readers always get copies.
type EventStore struct {
	clock *domain.MonotonicClock

	mu          sync.RWMutex
	state       domain.EventState
	subscribers map[chan domain.EventState]struct{}
}

func NewEventStore() *EventStore {
	return NewEventStoreWithClock(time.Now)
}

// NewEventStoreWithClock is test-only for deterministic timestamps.
func NewEventStoreWithClock(now func() time.Time) *EventStore {
	return &EventStore{
		clock:       domain.NewMonotonicClock(now),
		state:       domain.NewEventState(),
		subscribers: make(map[chan domain.EventState]struct{}),
	}
}

func (s *EventStore) Snapshot(_ context.Context) (domain.EventState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone(), nil
}

func (s *EventStore) Transact(ctx context.Context, mutate func(*domain.EventState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	draft := s.state.Clone()
	if err := mutate(&draft); err != nil {
		return err
	}
	s.state = draft
	s.broadcastLocked()
	return nil
}

func (s *EventStore) Subscribe(_ context.Context) (<-chan domain.EventState, func(), error) {
	ch := make(chan domain.EventState, 8)

	// The buffer is empty, so the initial send cannot block and no commit
	// can overtake it.
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	ch <- s.state.Clone()
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel, nil
}

func (s *EventStore) ServerTimestamp() int64 {
	return s.clock.Next()
}

func (s *EventStore) broadcastLocked() {
	for ch := range s.subscribers {
		snap := s.state.Clone()
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks a writer.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
