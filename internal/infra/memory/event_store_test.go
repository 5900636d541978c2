package memory

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"feedbacker-service/internal/domain"
)

func TestTransactCommitsOnlyOnSuccess(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()

	boom := errors.New("boom")
	err := store.Transact(ctx, func(s *domain.EventState) error {
		s.IntroMessage = "half written"
		s.Responses["r1"] = domain.Response{ID: "r1"}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
	state, _ := store.Snapshot(ctx)
	if state.IntroMessage != "" || len(state.Responses) != 0 {
		t.Fatalf("expected rejected transaction to leave no trace, got %+v", state)
	}

	if err := store.Transact(ctx, func(s *domain.EventState) error {
		s.IntroMessage = "welcome"
		return nil
	}); err != nil {
		t.Fatalf("transact: %v", err)
	}
	if state, _ := store.Snapshot(ctx); state.IntroMessage != "welcome" {
		t.Fatalf("expected committed intro message, got %q", state.IntroMessage)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()
	_ = store.Transact(ctx, func(s *domain.EventState) error {
		s.Questions["q1"] = domain.Question{ID: "q1", Options: []string{"a", "b"}}
		return nil
	})

	snap, _ := store.Snapshot(ctx)
	snap.Questions["q1"].Options[0] = "changed"
	delete(snap.Questions, "q1")

	again, _ := store.Snapshot(ctx)
	if q, ok := again.Questions["q1"]; !ok || q.Options[0] != "a" {
		t.Fatalf("expected store state untouched, got %+v", again.Questions)
	}
}

func TestSubscribeReceivesCommits(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()
	ch, cancel, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	<-ch // initial snapshot

	_ = store.Transact(ctx, func(s *domain.EventState) error {
		s.IsPublished = true
		return nil
	})
	select {
	case update := <-ch:
		if !update.IsPublished {
			t.Fatalf("expected published update")
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for update")
	}
}

func TestServerTimestampStrictlyIncreases(t *testing.T) {
	frozen := time.UnixMilli(1_700_000_000_000)
	store := NewEventStoreWithClock(func() time.Time { return frozen })

	prev := store.ServerTimestamp()
	for i := 0; i < 5; i++ {
		next := store.ServerTimestamp()
		if next <= prev {
			t.Fatalf("expected increasing timestamps, got %d after %d", next, prev)
		}
		prev = next
	}
}

func TestSubscribeDuringCommitsKeepsOrder(t *testing.T) {
	ctx := context.Background()
	store := NewEventStore()
	const last = 200

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= last; i++ {
			_ = store.Transact(ctx, func(s *domain.EventState) error {
				s.IntroMessage = strconv.Itoa(i)
				return nil
			})
		}
	}()

	ch, cancel, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	prev := -1
	timeout := time.After(5 * time.Second)
	for prev != last {
		select {
		case s := <-ch:
			n, _ := strconv.Atoi(s.IntroMessage)
			if n < prev {
				t.Fatalf("received commit %d after %d", n, prev)
			}
			prev = n
		case <-timeout:
			t.Fatalf("timed out at commit %d", prev)
		}
	}
	<-done
}
