package app

import (
	"context"
	"errors"
	"log/slog"

	"feedbacker-service/internal/domain"
	"feedbacker-service/internal/player"
)

// PlayerService contains the player use cases. Every command addresses the
// live session of one device.
type PlayerService struct {
	store     Store
	devices   DeviceStorage
	sessions  SessionRepository
	responses *ResponseStore
	prizes    *PrizeDesk
}

func NewPlayerService(store Store, devices DeviceStorage, sessions SessionRepository, responses *ResponseStore, prizes *PrizeDesk) *PlayerService {
	return &PlayerService{
		store:     store,
		devices:   devices,
		sessions:  sessions,
		responses: responses,
		prizes:    prizes,
	}
}

// Connect restores or reuses the session of a device. Every Connect must be
// paired with a Disconnect.
func (s *PlayerService) Connect(ctx context.Context, deviceID, name string) (*PlayerSession, error) {
	if deviceID == "" {
		return nil, domain.ErrSessionNotFound
	}
	session, err := s.sessions.Acquire(ctx, deviceID, func(ctx context.Context) (*PlayerSession, error) {
		machine, err := player.NewMachine(ctx, s.devices.For(deviceID))
		if err != nil {
			return nil, err
		}
		return NewPlayerSession(deviceID, machine), nil
	})
	if err != nil {
		return nil, err
	}
	if name != "" {
		session.machine.SetName(name)
	}
	return session, nil
}

// Disconnect releases a connection and drops the session once nobody uses it.
func (s *PlayerService) Disconnect(_ context.Context, deviceID string) {
	s.sessions.Release(deviceID)
}

// SetName records the display name of the player.
func (s *PlayerService) SetName(_ context.Context, deviceID, name string) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	session.machine.SetName(name)
	return nil
}

// SelectObject opens an object of the published event.
func (s *PlayerService) SelectObject(ctx context.Context, deviceID, objectID string) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	state, err := s.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	if !state.IsPublished {
		return domain.ErrEventNotPublished
	}
	if _, ok := state.Objects[objectID]; !ok {
		return domain.ErrObjectNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if err := session.machine.SelectObject(objectID); err != nil {
		return err
	}
	session.nav = player.NewNavigator(session.machine, objectID, state.QuestionsFor(objectID))
	return nil
}

// SelectOption answers a single choice question or toggles a multiple choice option.
func (s *PlayerService) SelectOption(_ context.Context, deviceID string, index int) error {
	return s.navigate(deviceID, func(n *player.Navigator) error { return n.SelectOption(index) })
}

// ToggleOption flips an option of a multiple choice question.
func (s *PlayerService) ToggleOption(_ context.Context, deviceID string, index int) error {
	return s.navigate(deviceID, func(n *player.Navigator) error { return n.ToggleOption(index) })
}

// SetText replaces the draft of an open-ended question.
func (s *PlayerService) SetText(_ context.Context, deviceID, text string) error {
	return s.navigate(deviceID, func(n *player.Navigator) error { return n.SetText(text) })
}

// SetRating answers a rating question.
func (s *PlayerService) SetRating(_ context.Context, deviceID string, value int) error {
	return s.navigate(deviceID, func(n *player.Navigator) error { return n.SetRating(value) })
}

// Skip records the empty answer for the current question.
func (s *PlayerService) Skip(_ context.Context, deviceID string) error {
	return s.navigate(deviceID, (*player.Navigator).Skip)
}

// Next moves to the following question.
func (s *PlayerService) Next(_ context.Context, deviceID string) error {
	return s.navigate(deviceID, (*player.Navigator).Next)
}

// Previous moves to the preceding question.
func (s *PlayerService) Previous(_ context.Context, deviceID string) error {
	return s.navigate(deviceID, (*player.Navigator).Previous)
}

// GoTo jumps to a question by position.
func (s *PlayerService) GoTo(_ context.Context, deviceID string, index int) error {
	return s.navigate(deviceID, func(n *player.Navigator) error { return n.GoTo(index) })
}

// Finish persists the answers of the open object and leaves it.
func (s *PlayerService) Finish(ctx context.Context, deviceID string) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	state, err := s.store.Snapshot(ctx)
	if err != nil {
		return err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.nav == nil {
		return domain.ErrInvalidTransition
	}
	if err := session.nav.Finish(ctx, s.responses, state.PrizeEnabled); err != nil {
		if errors.Is(err, domain.ErrPersistence) {
			slog.Warn("finish object failed", "deviceId", deviceID, "objectId", session.nav.ObjectID(), "error", err)
		}
		return err
	}
	session.nav = nil
	return nil
}

// Cancel abandons the open object and its drafts.
func (s *PlayerService) Cancel(_ context.Context, deviceID string) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if err := session.machine.CancelObject(); err != nil {
		return err
	}
	session.nav = nil
	return nil
}

// SubmitPrizeEmail registers the player for the prize.
func (s *PlayerService) SubmitPrizeEmail(ctx context.Context, deviceID, name, email string) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	return session.machine.SubmitPrizeEmail(ctx, s.prizes, name, email)
}

// SkipPrizeEmail leaves the email gate without registering.
func (s *PlayerService) SkipPrizeEmail(_ context.Context, deviceID string) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	return session.machine.SkipPrizeEmail()
}

// OpenPrizeClaim shows the claim screen.
func (s *PlayerService) OpenPrizeClaim(ctx context.Context, deviceID string) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	state, err := s.store.Snapshot(ctx)
	if err != nil {
		return err
	}
	return session.machine.OpenPrizeClaim(state.PrizeEnabled)
}

// ClosePrizeClaim returns from the claim screen.
func (s *PlayerService) ClosePrizeClaim(_ context.Context, deviceID string) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	return session.machine.ClosePrizeClaim()
}

// View renders what the device should show right now.
func (s *PlayerService) View(ctx context.Context, deviceID string) (PlayerView, error) {
	session, err := s.session(deviceID)
	if err != nil {
		return PlayerView{}, err
	}
	state, err := s.store.Snapshot(ctx)
	if err != nil {
		return PlayerView{}, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return buildPlayerView(session.machine.Snapshot(), state, session.nav), nil
}

func (s *PlayerService) session(deviceID string) (*PlayerSession, error) {
	session, ok := s.sessions.Get(deviceID)
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session, nil
}

func (s *PlayerService) navigate(deviceID string, fn func(*player.Navigator) error) error {
	session, err := s.session(deviceID)
	if err != nil {
		return err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	if session.nav == nil {
		return domain.ErrInvalidTransition
	}
	return fn(session.nav)
}
