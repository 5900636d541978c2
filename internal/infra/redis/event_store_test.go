package redis

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/domain"
)

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func runMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return mr
}

func TestEventStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	mr := runMiniredis(t)
	store := NewEventStore(newClient(mr), "evt")

	empty, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if empty.Branding.PrimaryColor != domain.DefaultPrimaryColor || empty.CarouselIntervalSeconds != domain.DefaultCarouselIntervalSeconds {
		t.Fatalf("expected defaults for an empty event, got %+v", empty)
	}

	err = store.Transact(ctx, func(s *domain.EventState) error {
		s.IntroMessage = "Hello"
		s.Objects["o1"] = domain.FeedbackObject{ID: "o1", Name: "Obj", CreatedAt: 1}
		s.Questions["q1"] = domain.Question{ID: "q1", ObjectID: "o1", Type: domain.QuestionMultiple, Options: []string{"a", "b"}, CreatedAt: 2}
		s.Responses["s_q1"] = domain.AnswerToResponse("s", "o1", "q1", domain.MultipleAnswer{Value: []int{1}}, 3)
		s.CompletedObjects["s_o1"] = domain.CompletedObjectEntry{SessionID: "s", ObjectID: "o1", Timestamp: 3}
		return nil
	})
	if err != nil {
		t.Fatalf("transact: %v", err)
	}
	if !mr.Exists("feedbacker:evt:responses") {
		t.Fatalf("expected responses hash to be written")
	}

	state, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	resp := state.Responses["s_q1"]
	if state.IntroMessage != "Hello" || len(state.Objects) != 1 || len(resp.SelectedOptionIndexes) != 1 || resp.SelectedOptionIndexes[0] != 1 {
		t.Fatalf("unexpected state after reload: %+v", state)
	}

	_ = store.Transact(ctx, func(s *domain.EventState) error {
		delete(s.Responses, "s_q1")
		return nil
	})
	if keys, _ := mr.HKeys("feedbacker:evt:responses"); len(keys) != 0 {
		t.Fatalf("expected deleted response removed from redis, got %v", keys)
	}
}

func TestEventStoreMutatorErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	mr := runMiniredis(t)
	store := NewEventStore(newClient(mr), "evt")

	boom := errors.New("boom")
	err := store.Transact(ctx, func(s *domain.EventState) error {
		s.IntroMessage = "nope"
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected mutator error, got %v", err)
	}
	if mr.Exists("feedbacker:evt:settings") {
		t.Fatalf("expected nothing written")
	}
}

func TestEventStoreDetectsConcurrentModification(t *testing.T) {
	ctx := context.Background()
	mr := runMiniredis(t)
	client := newClient(mr)
	store := NewEventStore(client, "evt")
	other := newClient(mr)

	err := store.Transact(ctx, func(s *domain.EventState) error {
		// Another writer commits between our read and our write.
		if err := other.HSet(ctx, "feedbacker:evt:objects", "x", `{"id":"x"}`).Err(); err != nil {
			t.Fatalf("concurrent write: %v", err)
		}
		s.IntroMessage = "mine"
		return nil
	})
	if !errors.Is(err, domain.ErrConcurrentModification) {
		t.Fatalf("expected concurrent modification, got %v", err)
	}
	state, _ := store.Snapshot(ctx)
	if state.IntroMessage != "" {
		t.Fatalf("expected losing transaction discarded, got %q", state.IntroMessage)
	}
}

func TestEventStoreSubscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mr := runMiniredis(t)
	store := NewEventStore(newClient(mr), "evt")

	ch, unsubscribe, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()
	<-ch // initial snapshot

	_ = store.Transact(ctx, func(s *domain.EventState) error {
		s.IsPublished = true
		return nil
	})
	select {
	case state := <-ch:
		if !state.IsPublished {
			t.Fatalf("expected published state")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for change notice")
	}
}

func TestServerTimestampIsSharedAcrossInstances(t *testing.T) {
	mr := runMiniredis(t)
	fixed := time.UnixMilli(1_700_000_000_000)
	mr.SetTime(fixed)
	a := NewEventStore(newClient(mr), "evt")
	b := NewEventStore(newClient(mr), "evt")

	last := int64(0)
	for i := 0; i < 20; i++ {
		store := a
		if i%2 == 1 {
			store = b
		}
		ts := store.ServerTimestamp()
		if ts <= last {
			t.Fatalf("timestamp %d not after %d", ts, last)
		}
		last = ts
	}
	if first := fixed.UnixMilli(); last != first+19 {
		t.Fatalf("expected a single sequence from %d, ended at %d", first, last)
	}

	if err := a.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if ts := b.ServerTimestamp(); ts <= last {
		t.Fatalf("expected the sequence to survive a reset, got %d after %d", ts, last)
	}
}

func TestHostsOnTwoInstancesKeepBothObjects(t *testing.T) {
	ctx := context.Background()
	mr := runMiniredis(t)
	mr.SetTime(time.UnixMilli(1_700_000_000_000))

	newHost := func() *app.HostService {
		store := NewEventStore(newClient(mr), "evt")
		return app.NewHostService(store, app.NewResponseStore(store), nil)
	}
	hostA, hostB := newHost(), newHost()

	coffee, err := hostA.AddObject(ctx, app.ObjectInput{Name: "Coffee"})
	if err != nil {
		t.Fatalf("add coffee: %v", err)
	}
	tea, err := hostB.AddObject(ctx, app.ObjectInput{Name: "Tea"})
	if err != nil {
		t.Fatalf("add tea: %v", err)
	}
	if coffee.ID == tea.ID {
		t.Fatalf("expected distinct ids, both got %s", coffee.ID)
	}
	state, _ := NewEventStore(newClient(mr), "evt").Snapshot(ctx)
	if len(state.Objects) != 2 {
		t.Fatalf("expected both objects stored, got %+v", state.Objects)
	}
}

func TestSubscribeSeesLatestCommitUnderConcurrentReads(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mr := runMiniredis(t)
	store := NewEventStore(newClient(mr), "evt")

	ch, unsubscribe, err := store.Subscribe(ctx)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ctx.Err() == nil {
			_, _ = store.Snapshot(ctx)
		}
	}()
	defer wg.Wait()
	defer cancel()

	const commits = 20
	for i := 1; i <= commits; i++ {
		msg := strconv.Itoa(i)
		if err := store.Transact(ctx, func(s *domain.EventState) error {
			s.IntroMessage = msg
			return nil
		}); err != nil {
			t.Fatalf("transact %d: %v", i, err)
		}
	}

	want := strconv.Itoa(commits)
	deadline := time.After(3 * time.Second)
	for {
		select {
		case state := <-ch:
			if state.IntroMessage == want {
				return
			}
		case <-deadline:
			t.Fatalf("subscriber never saw intro %q", want)
		}
	}
}
