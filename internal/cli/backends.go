package cli

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"feedbacker-service/internal/app"
	"feedbacker-service/internal/config"
	"feedbacker-service/internal/domain"
	"feedbacker-service/internal/infra/memory"
	pgstore "feedbacker-service/internal/infra/postgres"
	redisstore "feedbacker-service/internal/infra/redis"
)

// backends are the storage adapters picked from config: Redis and Postgres
// when configured, in-process stores otherwise.
type backends struct {
	store       app.Store
	devices     app.DeviceStorage
	sessions    app.SessionRepository
	leaderboard app.Leaderboard
	closers     []func()
}

func (b *backends) Close() {
	for i := len(b.closers) - 1; i >= 0; i-- {
		b.closers[i]()
	}
}

func openBackends(ctx context.Context, cfg config.Config) (*backends, error) {
	b := &backends{}

	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, err
		}
		b.closers = append(b.closers, func() { client.Close() })
		b.store = redisstore.NewEventStore(client, cfg.Event.ID)
		b.devices = redisstore.NewDeviceStorage(client, config.TTLDuration(cfg.Session.DeviceTTL, 30*24*time.Hour))
		b.sessions = redisstore.NewSessionStore(client, config.TTLDuration(cfg.Session.TTL, 10*time.Minute))
	} else {
		b.store = memory.NewEventStore()
		b.devices = memory.NewDeviceStorage()
		b.sessions = memory.NewSessionStore()
	}

	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.closers = append(b.closers, pool.Close)
		b.leaderboard = pgstore.NewLeaderboard(pool)
	} else {
		b.leaderboard = memory.NewLeaderboard()
	}
	return b, nil
}

// seedSettings applies config defaults to a fresh event.
func seedSettings(ctx context.Context, store app.Store, cfg config.Config) error {
	return store.Transact(ctx, func(s *domain.EventState) error {
		if len(s.Objects) == 0 && !s.IsPublished {
			s.CarouselIntervalSeconds = cfg.Event.CarouselIntervalSeconds
		}
		return nil
	})
}
