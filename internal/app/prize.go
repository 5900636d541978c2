package app

import (
	"context"
	"fmt"

	"feedbacker-service/internal/domain"
)

// PrizeDesk records prize registrations. Contact details go to the leaderboard
// as private metadata; the event state only learns that one more player registered.
type PrizeDesk struct {
	store       Store
	leaderboard Leaderboard
}

func NewPrizeDesk(store Store, leaderboard Leaderboard) *PrizeDesk {
	return &PrizeDesk{store: store, leaderboard: leaderboard}
}

// SubmitPrizeEmail upserts the registration of a session and bumps the counter.
func (p *PrizeDesk) SubmitPrizeEmail(ctx context.Context, sessionID, name, email string) error {
	entry := domain.LeaderboardEntry{
		BoardID:        domain.PrizeBoardID,
		Key:            sessionID,
		Order:          domain.SortDesc,
		Score:          p.store.ServerTimestamp(),
		PublicMetadata: map[string]any{},
		PrivateMetadata: map[string]any{
			"sessionId": sessionID,
			"name":      name,
			"email":     email,
		},
	}
	if err := p.leaderboard.UpsertEntry(ctx, entry); err != nil {
		return fmt.Errorf("%w: prize entry: %w", domain.ErrPersistence, err)
	}
	err := p.store.Transact(ctx, func(state *domain.EventState) error {
		state.PrizeSubmissionCount++
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: prize counter: %w", domain.ErrPersistence, err)
	}
	return nil
}

// ClearSubmissions resets the counter shown to the host. Leaderboard entries are kept.
func (p *PrizeDesk) ClearSubmissions(ctx context.Context) error {
	return p.store.Transact(ctx, func(state *domain.EventState) error {
		state.PrizeSubmissionCount = 0
		return nil
	})
}

// PrizeSubmission is the public side of one registration.
type PrizeSubmission struct {
	Key            string         `json:"key"`
	Score          int64          `json:"score"`
	PublicMetadata map[string]any `json:"publicMetadata"`
}

// PrizeSubmissions is what the host dashboard lists about registrations.
type PrizeSubmissions struct {
	Count   int               `json:"count"`
	Entries []PrizeSubmission `json:"entries"`
}

// Submissions reads the prize board. Contact details never leave the leaderboard.
func (p *PrizeDesk) Submissions(ctx context.Context) (PrizeSubmissions, error) {
	count, err := p.leaderboard.Count(ctx, domain.PrizeBoardID)
	if err != nil {
		return PrizeSubmissions{}, fmt.Errorf("%w: prize count: %w", domain.ErrPersistence, err)
	}
	entries, err := p.leaderboard.Entries(ctx, domain.PrizeBoardID)
	if err != nil {
		return PrizeSubmissions{}, fmt.Errorf("%w: prize entries: %w", domain.ErrPersistence, err)
	}
	out := PrizeSubmissions{Count: count, Entries: make([]PrizeSubmission, 0, len(entries))}
	for _, e := range entries {
		public := e.PublicMetadata
		if public == nil {
			public = map[string]any{}
		}
		out.Entries = append(out.Entries, PrizeSubmission{Key: e.Key, Score: e.Score, PublicMetadata: public})
	}
	return out, nil
}
