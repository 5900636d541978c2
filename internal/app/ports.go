package app

import (
	"context"

	"feedbacker-service/internal/domain"
	"feedbacker-service/internal/player"
)

// Store is the transactional event store shared by host, players and presenter.
type Store interface {
	// Snapshot returns a private copy of the current event state.
	Snapshot(ctx context.Context) (domain.EventState, error)
	// Transact runs mutate on a private copy and commits it only when mutate
	// returns nil. Either every change is visible to readers or none is.
	Transact(ctx context.Context, mutate func(*domain.EventState) error) error
	// Subscribe delivers the current state followed by a snapshot after every
	// commit. The caller must invoke the returned cancel function.
	Subscribe(ctx context.Context) (<-chan domain.EventState, func(), error)
	// ServerTimestamp returns a strictly increasing millisecond timestamp.
	ServerTimestamp() int64
}

// Leaderboard stores entries out of band from the openly readable event state.
type Leaderboard interface {
	UpsertEntry(ctx context.Context, entry domain.LeaderboardEntry) error
	// Entries lists a board in its sort order. Backends may withhold
	// PrivateMetadata; callers never expose it.
	Entries(ctx context.Context, boardID string) ([]domain.LeaderboardEntry, error)
	Count(ctx context.Context, boardID string) (int, error)
}

// DeviceStorage hands out the device-local persistence of one device.
type DeviceStorage interface {
	For(deviceID string) player.LocalStore
}

// SessionRepository abstracts where live player sessions are kept (in-memory, Redis, etc).
// Attaching and releasing connections happens under the repository lock, so
// a session is never dropped while a new connection is joining it.
type SessionRepository interface {
	// Acquire returns the session of deviceID, creating it when missing, with
	// one more connection attached.
	Acquire(ctx context.Context, deviceID string, create func(context.Context) (*PlayerSession, error)) (*PlayerSession, error)
	Get(deviceID string) (*PlayerSession, bool)
	// Release detaches one connection and drops the session once none is left.
	Release(deviceID string)
}
