package app

import (
	"context"

	"feedbacker-service/internal/aggregate"
	"feedbacker-service/internal/domain"
)

// ObjectStats holds the live statistics of every question of an object.
type ObjectStats struct {
	Object      domain.FeedbackObject `json:"object"`
	Completions int                   `json:"completions"`
	Questions   []QuestionStats       `json:"questions"`
}

// QuestionStats pairs a question with its aggregate.
type QuestionStats struct {
	Question domain.Question   `json:"question"`
	Summary  aggregate.Summary `json:"summary"`
}

// Dashboard is the host statistics page.
type Dashboard struct {
	TotalResponses       int           `json:"totalResponses"`
	TotalCompletions     int           `json:"totalCompletions"`
	PrizeSubmissionCount int           `json:"prizeSubmissionCount"`
	Objects              []ObjectStats `json:"objects"`
}

// StatsService aggregates responses for the host dashboard. Nothing is cached.
type StatsService struct {
	store Store
}

func NewStatsService(store Store) *StatsService {
	return &StatsService{store: store}
}

// Dashboard computes statistics for every object, or only objectID when set.
func (s *StatsService) Dashboard(ctx context.Context, objectID string) (Dashboard, error) {
	state, err := s.store.Snapshot(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	if objectID != "" {
		if _, ok := state.Objects[objectID]; !ok {
			return Dashboard{}, domain.ErrObjectNotFound
		}
	}
	return BuildDashboard(state, objectID), nil
}

// BuildDashboard aggregates an already loaded state.
func BuildDashboard(state domain.EventState, objectID string) Dashboard {
	d := Dashboard{
		TotalResponses:       len(state.Responses),
		TotalCompletions:     len(state.CompletedObjects),
		PrizeSubmissionCount: state.PrizeSubmissionCount,
		Objects:              []ObjectStats{},
	}
	completions := make(map[string]int)
	for _, c := range state.CompletedObjects {
		completions[c.ObjectID]++
	}
	for _, obj := range state.SortedObjects() {
		if objectID != "" && obj.ID != objectID {
			continue
		}
		stats := ObjectStats{Object: obj, Completions: completions[obj.ID], Questions: []QuestionStats{}}
		for _, q := range state.QuestionsFor(obj.ID) {
			stats.Questions = append(stats.Questions, QuestionStats{
				Question: q,
				Summary:  aggregate.Summarize(q, state.ResponsesFor(q.ID)),
			})
		}
		d.Objects = append(d.Objects, stats)
	}
	return d
}
