package presenter

import (
	"context"
	"time"

	"feedbacker-service/internal/domain"
)

// StateSource is the part of the event store the presenter needs.
type StateSource interface {
	Subscribe(ctx context.Context) (<-chan domain.EventState, func(), error)
}

// Stream emits a frame for every store change and every carousel edge until
// ctx is done or emit fails. The carousel timer lives exactly as long as the call.
func Stream(ctx context.Context, src StateSource, emit func(Frame) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	updates, unsubscribe, err := src.Subscribe(ctx)
	if err != nil {
		return err
	}
	defer unsubscribe()

	var state domain.EventState
	select {
	case s, ok := <-updates:
		if !ok {
			return nil
		}
		state = s
	case <-ctx.Done():
		return nil
	}

	carousel := NewCarousel(intervalOf(state))
	carousel.SetLength(len(Playlist(state)))

	ticks := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		carousel.Run(ctx, func() {
			select {
			case ticks <- struct{}{}:
			default:
			}
		})
	}()
	defer func() {
		cancel()
		<-done
	}()

	render := func() error {
		index, transitioning := carousel.Position()
		return emit(Render(state, index, transitioning))
	}
	if err := render(); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case s, ok := <-updates:
			if !ok {
				return nil
			}
			state = s
			carousel.SetInterval(intervalOf(state))
			carousel.SetLength(len(Playlist(state)))
			if err := render(); err != nil {
				return err
			}
		case <-ticks:
			if err := render(); err != nil {
				return err
			}
		}
	}
}

func intervalOf(state domain.EventState) time.Duration {
	seconds := state.CarouselIntervalSeconds
	if seconds < 1 {
		seconds = domain.DefaultCarouselIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}
