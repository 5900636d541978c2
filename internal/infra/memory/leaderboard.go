package memory

import (
	"context"
	"maps"
	"sort"
	"sync"

	"feedbacker-service/internal/domain"
)

// Leaderboard is an in-memory app.Leaderboard used when no database is configured.
type Leaderboard struct {
	mu      sync.RWMutex
	entries map[string]map[string]domain.LeaderboardEntry
}

func NewLeaderboard() *Leaderboard {
	return &Leaderboard{entries: make(map[string]map[string]domain.LeaderboardEntry)}
}

func (l *Leaderboard) UpsertEntry(_ context.Context, entry domain.LeaderboardEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	board, ok := l.entries[entry.BoardID]
	if !ok {
		board = make(map[string]domain.LeaderboardEntry)
		l.entries[entry.BoardID] = board
	}
	entry.PublicMetadata = maps.Clone(entry.PublicMetadata)
	entry.PrivateMetadata = maps.Clone(entry.PrivateMetadata)
	board[entry.Key] = entry
	return nil
}

// Entries lists a board in its own sort order.
func (l *Leaderboard) Entries(_ context.Context, boardID string) ([]domain.LeaderboardEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.LeaderboardEntry, 0, len(l.entries[boardID]))
	for _, e := range l.entries[boardID] {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			if out[i].Order == domain.SortAsc {
				return out[i].Score < out[j].Score
			}
			return out[i].Score > out[j].Score
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

func (l *Leaderboard) Count(_ context.Context, boardID string) (int, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries[boardID]), nil
}
