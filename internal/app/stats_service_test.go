package app_test

import (
	"context"
	"errors"
	"testing"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/domain"
)

func TestDashboardAggregatesLiveResponses(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	obj, qs := f.seedEvent(t)
	responses := app.NewResponseStore(f.store)

	for i, pick := range []*int{domain.IntPtr(0), domain.IntPtr(0), domain.IntPtr(1), nil} {
		session := string(rune('a' + i))
		_ = responses.PersistAnswers(ctx, session, obj.ID, domain.AnswerSet{
			qs[0].ID: domain.SingleAnswer{Value: pick},
		})
	}

	d, err := f.stats.Dashboard(ctx, "")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if d.TotalResponses != 4 || d.TotalCompletions != 4 || len(d.Objects) != 1 {
		t.Fatalf("unexpected totals: %+v", d)
	}
	stats := d.Objects[0]
	if stats.Completions != 4 || len(stats.Questions) != 4 {
		t.Fatalf("unexpected object stats: %+v", stats)
	}
	single := stats.Questions[0].Summary
	if single.TotalResponses != 4 || single.AnsweredCount != 3 || single.SkipCount != 1 || single.Options[0].Count != 2 {
		t.Fatalf("unexpected single summary: %+v", single)
	}
	if rating := stats.Questions[2].Summary; rating.TotalResponses != 0 || rating.Mean != 0 {
		t.Fatalf("expected empty rating summary, got %+v", rating)
	}

	if _, err := f.stats.Dashboard(ctx, "missing"); !errors.Is(err, domain.ErrObjectNotFound) {
		t.Fatalf("expected unknown object, got %v", err)
	}
}
