package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"feedbacker-service/internal/domain"
)

// EventStore keeps the event state in Redis so several service instances can
// share it. Layout, per event:
//
//	feedbacker:{event}:settings   JSON of the scalar settings
//	feedbacker:{event}:objects    HASH id -> JSON
//	feedbacker:{event}:questions  HASH id -> JSON
//	feedbacker:{event}:responses  HASH id -> JSON
//	feedbacker:{event}:completed  HASH key -> JSON
//
// Transactions WATCH every key, so a concurrent commit makes the loser fail
// with domain.ErrConcurrentModification. Commits are announced on
// feedbacker:{event}:changes. Timestamps are minted from the Redis clock on
// feedbacker:{event}:clock so every instance draws from one sequence.
type EventStore struct {
	client  *redis.Client
	eventID string
	clock   *domain.MonotonicClock
	sf      singleflight.Group
}

// mintTimestamp returns the Redis time in milliseconds, bumped past the last
// value handed out so ids stay unique across instances.
var mintTimestamp = redis.NewScript(`
local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)
local last = tonumber(redis.call('GET', KEYS[1]) or '0')
if now <= last then
	now = last + 1
end
redis.call('SET', KEYS[1], now)
return now
`)

type settings struct {
	Branding                domain.Branding  `json:"branding"`
	IntroMessage            string           `json:"introMessage"`
	IsPublished             bool             `json:"isPublished"`
	CarouselIntervalSeconds int              `json:"carouselIntervalSeconds"`
	PrizeEnabled            bool             `json:"prizeEnabled"`
	PrizeEmailCollection    domain.PrizePage `json:"prizeEmailCollection"`
	PrizeClaim              domain.PrizePage `json:"prizeClaim"`
	PrizeSubmissionCount    int              `json:"prizeSubmissionCount"`
}

func NewEventStore(client *redis.Client, eventID string) *EventStore {
	if eventID == "" {
		eventID = "default"
	}
	return &EventStore{
		client:  client,
		eventID: eventID,
		clock:   domain.NewMonotonicClock(time.Now),
	}
}

func (s *EventStore) Snapshot(ctx context.Context) (domain.EventState, error) {
	result, err, _ := s.sf.Do("snapshot", func() (interface{}, error) {
		return s.load(ctx, s.client)
	})
	if err != nil {
		return domain.EventState{}, err
	}
	// Callers coalesced by singleflight share one result; each gets a copy.
	return result.(domain.EventState).Clone(), nil
}

func (s *EventStore) Transact(ctx context.Context, mutate func(*domain.EventState) error) error {
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		before, err := s.load(ctx, tx)
		if err != nil {
			return err
		}
		after := before.Clone()
		if err := mutate(&after); err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			return s.write(ctx, pipe, before, after)
		})
		return err
	}, s.keys()...)
	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrConcurrentModification
	}
	if err != nil {
		return err
	}
	// Subscribers reload on notice; a lost notice only delays them until the next commit.
	_ = s.client.Publish(ctx, s.changesKey(), s.eventID).Err()
	return nil
}

func (s *EventStore) Subscribe(ctx context.Context) (<-chan domain.EventState, func(), error) {
	pubsub := s.client.Subscribe(ctx, s.changesKey())
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}
	initial, err := s.load(ctx, s.client)
	if err != nil {
		_ = pubsub.Close()
		return nil, nil, err
	}

	ch := make(chan domain.EventState, 8)
	ch <- initial
	notices := pubsub.Channel()
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-notices:
				if !ok {
					return
				}
				// A coalesced Snapshot may have started before the commit.
				state, err := s.load(ctx, s.client)
				if err != nil {
					continue
				}
				select {
				case ch <- state:
				default:
					select {
					case <-ch:
					default:
					}
					ch <- state
				}
			}
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return ch, cancel, nil
}

// ServerTimestamp falls back to the local clock while Redis is unreachable.
func (s *EventStore) ServerTimestamp() int64 {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	ts, err := mintTimestamp.Run(ctx, s.client, []string{s.clockKey()}).Int64()
	if err != nil {
		slog.Warn("redis timestamp failed, using local clock", "event", s.eventID, "error", err)
		return s.clock.Next()
	}
	return ts
}

// Reset deletes every key of the event.
func (s *EventStore) Reset(ctx context.Context) error {
	return s.client.Del(ctx, s.keys()...).Err()
}

// reader is satisfied by both the client and a WATCH transaction.
type reader interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
}

func (s *EventStore) load(ctx context.Context, r reader) (domain.EventState, error) {
	state := domain.NewEventState()

	raw, err := r.Get(ctx, s.settingsKey()).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
	case err != nil:
		return state, err
	default:
		var st settings
		if err := json.Unmarshal(raw, &st); err != nil {
			return state, fmt.Errorf("decode settings: %w", err)
		}
		state.Branding = st.Branding
		state.IntroMessage = st.IntroMessage
		state.IsPublished = st.IsPublished
		state.CarouselIntervalSeconds = st.CarouselIntervalSeconds
		state.PrizeEnabled = st.PrizeEnabled
		state.PrizeEmailCollection = st.PrizeEmailCollection
		state.PrizeClaim = st.PrizeClaim
		state.PrizeSubmissionCount = st.PrizeSubmissionCount
	}

	if err := loadHash(ctx, r, s.hashKey("objects"), state.Objects); err != nil {
		return state, err
	}
	if err := loadHash(ctx, r, s.hashKey("questions"), state.Questions); err != nil {
		return state, err
	}
	if err := loadHash(ctx, r, s.hashKey("responses"), state.Responses); err != nil {
		return state, err
	}
	if err := loadHash(ctx, r, s.hashKey("completed"), state.CompletedObjects); err != nil {
		return state, err
	}
	return state, nil
}

func (s *EventStore) write(ctx context.Context, pipe redis.Pipeliner, before, after domain.EventState) error {
	raw, err := json.Marshal(settings{
		Branding:                after.Branding,
		IntroMessage:            after.IntroMessage,
		IsPublished:             after.IsPublished,
		CarouselIntervalSeconds: after.CarouselIntervalSeconds,
		PrizeEnabled:            after.PrizeEnabled,
		PrizeEmailCollection:    after.PrizeEmailCollection,
		PrizeClaim:              after.PrizeClaim,
		PrizeSubmissionCount:    after.PrizeSubmissionCount,
	})
	if err != nil {
		return err
	}
	pipe.Set(ctx, s.settingsKey(), raw, 0)

	if err := writeHash(ctx, pipe, s.hashKey("objects"), before.Objects, after.Objects); err != nil {
		return err
	}
	if err := writeHash(ctx, pipe, s.hashKey("questions"), before.Questions, after.Questions); err != nil {
		return err
	}
	if err := writeHash(ctx, pipe, s.hashKey("responses"), before.Responses, after.Responses); err != nil {
		return err
	}
	return writeHash(ctx, pipe, s.hashKey("completed"), before.CompletedObjects, after.CompletedObjects)
}

func loadHash[T any](ctx context.Context, r reader, key string, into map[string]T) error {
	fields, err := r.HGetAll(ctx, key).Result()
	if err != nil {
		return err
	}
	for id, raw := range fields {
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return fmt.Errorf("decode %s/%s: %w", key, id, err)
		}
		into[id] = v
	}
	return nil
}

// writeHash queues only the fields that changed between before and after.
func writeHash[T any](ctx context.Context, pipe redis.Pipeliner, key string, before, after map[string]T) error {
	var removed []string
	for id := range before {
		if _, ok := after[id]; !ok {
			removed = append(removed, id)
		}
	}
	if len(removed) > 0 {
		pipe.HDel(ctx, key, removed...)
	}

	changed := make(map[string]interface{})
	for id, v := range after {
		next, err := json.Marshal(v)
		if err != nil {
			return err
		}
		if old, ok := before[id]; ok {
			prev, err := json.Marshal(old)
			if err == nil && string(prev) == string(next) {
				continue
			}
		}
		changed[id] = string(next)
	}
	if len(changed) > 0 {
		pipe.HSet(ctx, key, changed)
	}
	return nil
}

func (s *EventStore) keys() []string {
	return []string{
		s.settingsKey(),
		s.hashKey("objects"),
		s.hashKey("questions"),
		s.hashKey("responses"),
		s.hashKey("completed"),
	}
}

func (s *EventStore) settingsKey() string {
	return "feedbacker:" + s.eventID + ":settings"
}

func (s *EventStore) hashKey(name string) string {
	return "feedbacker:" + s.eventID + ":" + name
}

// clockKey is left out of keys() so Reset never rewinds the sequence.
func (s *EventStore) clockKey() string {
	return "feedbacker:" + s.eventID + ":clock"
}

func (s *EventStore) changesKey() string {
	return "feedbacker:" + s.eventID + ":changes"
}
