package memory

import (
	"context"
	"testing"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/player"
)

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewSessionStore()
	devices := NewDeviceStorage()

	created := 0
	create := func(ctx context.Context) (*app.PlayerSession, error) {
		created++
		m, err := player.NewMachine(ctx, devices.For("device-1"))
		if err != nil {
			return nil, err
		}
		return app.NewPlayerSession("device-1", m), nil
	}

	session, err := store.Acquire(ctx, "device-1", create)
	if err != nil || session == nil {
		t.Fatalf("expected session, err=%v", err)
	}
	if again, _ := store.Acquire(ctx, "device-1", create); again != session || created != 1 {
		t.Fatalf("expected the existing session to be reused, created=%d", created)
	}

	store.Release("device-1")
	if _, ok := store.Get("device-1"); !ok {
		t.Fatalf("expected session kept while a connection remains")
	}
	if session.IsIdle() {
		t.Fatalf("expected one connection left attached")
	}

	store.Release("device-1")
	if _, ok := store.Get("device-1"); ok {
		t.Fatalf("expected idle session removed")
	}
	store.Release("device-1")
}

func TestSessionStoreAcquireErrorLeavesNothing(t *testing.T) {
	store := NewSessionStore()
	_, err := store.Acquire(context.Background(), "device-1", func(context.Context) (*app.PlayerSession, error) {
		return nil, context.Canceled
	})
	if err == nil {
		t.Fatalf("expected create error")
	}
	if _, ok := store.Get("device-1"); ok {
		t.Fatalf("expected no session after failed create")
	}
}
