package app_test

import (
	"context"
	"errors"
	"testing"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/domain"
	"feedbacker-service/internal/infra/memory"
)

var errRejected = errors.New("transaction rejected")

// flakyStore rejects transactions while fail is set.
type flakyStore struct {
	*memory.EventStore
	fail bool
}

func (s *flakyStore) Transact(ctx context.Context, mutate func(*domain.EventState) error) error {
	if s.fail {
		return errRejected
	}
	return s.EventStore.Transact(ctx, mutate)
}

type fixture struct {
	store       *flakyStore
	leaderboard *memory.Leaderboard
	sessions    *memory.SessionStore
	host        *app.HostService
	players     *app.PlayerService
	stats       *app.StatsService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := &flakyStore{EventStore: memory.NewEventStore()}
	lb := memory.NewLeaderboard()
	responses := app.NewResponseStore(store)
	prizes := app.NewPrizeDesk(store, lb)
	sessions := memory.NewSessionStore()
	return &fixture{
		store:       store,
		leaderboard: lb,
		sessions:    sessions,
		host:        app.NewHostService(store, responses, prizes),
		players:     app.NewPlayerService(store, memory.NewDeviceStorage(), sessions, responses, prizes),
		stats:       app.NewStatsService(store),
	}
}

// seedEvent publishes an event with one object holding a single, a multiple,
// a rating and an open-ended question, in that order.
func (f *fixture) seedEvent(t *testing.T) (domain.FeedbackObject, []domain.Question) {
	t.Helper()
	ctx := context.Background()
	if err := f.host.UpdateIntroMessage(ctx, "Welcome"); err != nil {
		t.Fatalf("intro: %v", err)
	}
	obj, err := f.host.AddObject(ctx, app.ObjectInput{Name: "Espresso"})
	if err != nil {
		t.Fatalf("add object: %v", err)
	}
	inputs := []app.QuestionInput{
		{Type: domain.QuestionSingle, Text: "Taste?", ImageURL: "img", Options: []string{"Good", "Bad"}},
		{Type: domain.QuestionMultiple, Text: "Notes?", ImageURL: "img", Options: []string{"Nutty", "Fruity", "Bitter"}},
		{Type: domain.QuestionRating, Text: "Score?", ImageURL: "img", RatingScale: 5},
		{Type: domain.QuestionOpenEnded, Text: "Anything else?", ImageURL: "img", OpenEndedLength: domain.OpenEndedLong},
	}
	questions := make([]domain.Question, 0, len(inputs))
	for _, in := range inputs {
		q, err := f.host.AddQuestion(ctx, obj.ID, in)
		if err != nil {
			t.Fatalf("add question: %v", err)
		}
		questions = append(questions, q)
	}
	if err := f.host.Publish(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}
	return obj, questions
}

func appObject(name string) app.ObjectInput {
	return app.ObjectInput{Name: name}
}
