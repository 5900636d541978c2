// Package player holds the per-device player flow: the session state machine
// that moves a player between views, and the navigator that walks the
// questions of the selected object.
package player

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"feedbacker-service/internal/domain"
)

// View is the screen a player session is on.
type View string

const (
	ViewIntro           View = "intro"
	ViewObjectQuestions View = "object-questions"
	ViewEmailCollection View = "email-collection"
	ViewPrizeClaim      View = "prize-claim"
)

// State is an immutable snapshot of a player session.
type State struct {
	SessionID              string           `json:"sessionId"`
	Name                   string           `json:"name"`
	View                   View             `json:"currentView"`
	SelectedObjectID       string           `json:"selectedObjectId,omitempty"`
	CurrentAnswers         domain.AnswerSet `json:"currentAnswers"`
	CompletedObjectIDs     []string         `json:"completedObjectIds"`
	HasSubmittedPrizeEmail bool             `json:"hasSubmittedPrizeEmail"`
}

// IsCompleted reports whether this device already finished objectID.
func (s State) IsCompleted(objectID string) bool {
	return slices.Contains(s.CompletedObjectIDs, objectID)
}

func (s State) clone() State {
	s.CurrentAnswers = s.CurrentAnswers.Clone()
	s.CompletedObjectIDs = slices.Clone(s.CompletedObjectIDs)
	return s
}

// LocalStore is device-scoped persistence that survives reconnects.
type LocalStore interface {
	GetOrCreateSessionID(ctx context.Context) (string, error)
	LoadCompletedObjectIDs(ctx context.Context) ([]string, error)
	SaveCompletedObjectIDs(ctx context.Context, ids []string) error
	LoadHasSubmittedPrizeEmail(ctx context.Context) (bool, error)
	SaveHasSubmittedPrizeEmail(ctx context.Context, submitted bool) error
}

// AnswerPersister writes every answer of an object plus its completion marker
// as one unit.
type AnswerPersister interface {
	PersistAnswers(ctx context.Context, sessionID, objectID string, answers domain.AnswerSet) error
}

// PrizeSubmitter stores prize contact details out of band.
type PrizeSubmitter interface {
	SubmitPrizeEmail(ctx context.Context, sessionID, name, email string) error
}

// Machine is the player session state machine. Commands are applied one at a
// time; readers get snapshots and may subscribe to every change.
type Machine struct {
	local LocalStore

	cmd sync.Mutex

	mu          sync.RWMutex
	state       State
	subscribers map[chan State]struct{}
}

// NewMachine restores a session from device storage and starts it on the intro view.
func NewMachine(ctx context.Context, local LocalStore) (*Machine, error) {
	sessionID, err := local.GetOrCreateSessionID(ctx)
	if err != nil {
		return nil, err
	}
	completed, err := local.LoadCompletedObjectIDs(ctx)
	if err != nil {
		return nil, err
	}
	submitted, err := local.LoadHasSubmittedPrizeEmail(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(completed))
	for _, id := range completed {
		if !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return &Machine{
		local: local,
		state: State{
			SessionID:              sessionID,
			View:                   ViewIntro,
			CurrentAnswers:         domain.AnswerSet{},
			CompletedObjectIDs:     ids,
			HasSubmittedPrizeEmail: submitted,
		},
		subscribers: make(map[chan State]struct{}),
	}, nil
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.clone()
}

// Subscribe returns a channel that receives the current state followed by
// every later change. The caller must invoke the returned cancel function.
func (m *Machine) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 8)

	m.mu.Lock()
	m.subscribers[ch] = struct{}{}
	ch <- m.state.clone()
	m.mu.Unlock()

	cancel := func() {
		m.mu.Lock()
		if _, ok := m.subscribers[ch]; ok {
			delete(m.subscribers, ch)
			close(ch)
		}
		m.mu.Unlock()
	}
	return ch, cancel
}

// SetName records the player's display name.
func (m *Machine) SetName(name string) {
	m.cmd.Lock()
	defer m.cmd.Unlock()
	m.commit(func(s *State) { s.Name = strings.TrimSpace(name) })
}

// SelectObject opens the questions of an object that this device has not completed.
func (m *Machine) SelectObject(objectID string) error {
	m.cmd.Lock()
	defer m.cmd.Unlock()

	cur := m.Snapshot()
	if cur.View != ViewIntro {
		return domain.ErrInvalidTransition
	}
	if objectID == "" {
		return domain.ErrObjectNotFound
	}
	if cur.IsCompleted(objectID) {
		return domain.ErrObjectCompleted
	}
	m.commit(func(s *State) {
		s.SelectedObjectID = objectID
		s.View = ViewObjectQuestions
		s.CurrentAnswers = domain.AnswerSet{}
	})
	return nil
}

// SetAnswer stores a draft answer for the selected object, replacing any
// earlier one for the same question. Nothing is persisted.
func (m *Machine) SetAnswer(objectID, questionID string, answer domain.Answer) error {
	m.cmd.Lock()
	defer m.cmd.Unlock()

	cur := m.Snapshot()
	if cur.View != ViewObjectQuestions || cur.SelectedObjectID != objectID {
		return domain.ErrInvalidTransition
	}
	m.commit(func(s *State) { s.CurrentAnswers[questionID] = domain.CloneAnswer(answer) })
	return nil
}

// FinishObject persists the draft answers and leaves the object. The view only
// changes once persistence succeeded; on failure the answers are kept so the
// player can retry. Without a selected object or session it does nothing.
func (m *Machine) FinishObject(ctx context.Context, persister AnswerPersister, prizeEnabled bool) error {
	m.cmd.Lock()
	defer m.cmd.Unlock()

	cur := m.Snapshot()
	if cur.SessionID == "" || cur.SelectedObjectID == "" {
		return nil
	}
	objectID := cur.SelectedObjectID
	if err := persister.PersistAnswers(ctx, cur.SessionID, objectID, cur.CurrentAnswers); err != nil {
		return err
	}

	next := ViewIntro
	if prizeEnabled && !cur.HasSubmittedPrizeEmail {
		next = ViewEmailCollection
	}
	var completed []string
	m.commit(func(s *State) {
		if !slices.Contains(s.CompletedObjectIDs, objectID) {
			s.CompletedObjectIDs = append(s.CompletedObjectIDs, objectID)
		}
		s.SelectedObjectID = ""
		s.View = next
		s.CurrentAnswers = domain.AnswerSet{}
		completed = slices.Clone(s.CompletedObjectIDs)
	})

	if err := m.local.SaveCompletedObjectIDs(ctx, completed); err != nil {
		slog.Warn("save completed objects", "sessionId", cur.SessionID, "error", err)
	}
	return nil
}

// CancelObject abandons the selected object and its drafts.
func (m *Machine) CancelObject() error {
	m.cmd.Lock()
	defer m.cmd.Unlock()

	if m.Snapshot().View != ViewObjectQuestions {
		return domain.ErrInvalidTransition
	}
	m.commit(func(s *State) {
		s.SelectedObjectID = ""
		s.View = ViewIntro
		s.CurrentAnswers = domain.AnswerSet{}
	})
	return nil
}

// SubmitPrizeEmail validates and stores the prize contact, then returns to intro.
func (m *Machine) SubmitPrizeEmail(ctx context.Context, submitter PrizeSubmitter, name, email string) error {
	m.cmd.Lock()
	defer m.cmd.Unlock()

	cur := m.Snapshot()
	if cur.View != ViewEmailCollection {
		return domain.ErrInvalidTransition
	}
	if err := domain.ValidatePrizeEmail(name, email); err != nil {
		return err
	}
	if cur.SessionID == "" {
		return nil
	}
	if err := submitter.SubmitPrizeEmail(ctx, cur.SessionID, strings.TrimSpace(name), strings.TrimSpace(email)); err != nil {
		return err
	}
	m.commit(func(s *State) {
		s.HasSubmittedPrizeEmail = true
		s.View = ViewIntro
	})
	if err := m.local.SaveHasSubmittedPrizeEmail(ctx, true); err != nil {
		slog.Warn("save prize email flag", "sessionId", cur.SessionID, "error", err)
	}
	return nil
}

// SkipPrizeEmail leaves the email gate without submitting.
func (m *Machine) SkipPrizeEmail() error {
	return m.move(ViewEmailCollection, ViewIntro)
}

// OpenPrizeClaim shows the claim screen to a player who registered for the prize.
func (m *Machine) OpenPrizeClaim(prizeEnabled bool) error {
	m.cmd.Lock()
	defer m.cmd.Unlock()

	cur := m.Snapshot()
	if cur.View != ViewIntro {
		return domain.ErrInvalidTransition
	}
	if !prizeEnabled {
		return domain.ErrPrizeDisabled
	}
	if !cur.HasSubmittedPrizeEmail {
		return domain.ErrInvalidTransition
	}
	m.commit(func(s *State) { s.View = ViewPrizeClaim })
	return nil
}

// ClosePrizeClaim returns from the claim screen.
func (m *Machine) ClosePrizeClaim() error {
	return m.move(ViewPrizeClaim, ViewIntro)
}

func (m *Machine) move(from, to View) error {
	m.cmd.Lock()
	defer m.cmd.Unlock()

	if m.Snapshot().View != from {
		return domain.ErrInvalidTransition
	}
	m.commit(func(s *State) { s.View = to })
	return nil
}

func (m *Machine) commit(mutate func(*State)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mutate(&m.state)
	m.broadcastLocked()
}

func (m *Machine) broadcastLocked() {
	for ch := range m.subscribers {
		snap := m.state.clone()
		select {
		case ch <- snap:
		default:
			// Drop the stale snapshot so a slow reader never blocks a command.
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
