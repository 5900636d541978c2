package presenter

import (
	"context"
	"testing"
	"time"

	"feedbacker-service/internal/domain"
	"feedbacker-service/internal/infra/memory"
)

func TestStreamFollowsStoreAndStops(t *testing.T) {
	store := memory.NewEventStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := make(chan Frame, 16)
	errc := make(chan error, 1)
	go func() {
		errc <- Stream(ctx, store, func(f Frame) error {
			frames <- f
			return nil
		})
	}()

	first := <-frames
	if first.Total != 0 {
		t.Fatalf("expected empty first frame, got %+v", first)
	}

	_ = store.Transact(ctx, func(s *domain.EventState) error {
		s.Objects["o"] = domain.FeedbackObject{ID: "o", Name: "Obj", CreatedAt: 1}
		s.Questions["q"] = domain.Question{ID: "q", ObjectID: "o", Type: domain.QuestionSingle, Options: []string{"x", "y"}, CreatedAt: 2}
		return nil
	})
	select {
	case f := <-frames:
		if f.Total != 1 || f.Slide == nil {
			t.Fatalf("expected the new slide, got %+v", f)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for frame")
	}

	cancel()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("stream: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatalf("stream did not stop")
	}
}
