package redis

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"feedbacker-service/internal/player"
)

// DeviceStorage keeps device-local player data in one Redis hash per device:
//
//	feedbacker:device:{deviceID}  sessionId | completed (JSON) | prizeEmail
//
// Keys expire after ttl of inactivity, with jitter so devices from the same
// event do not expire in one burst.
type DeviceStorage struct {
	client *redis.Client
	ttl    time.Duration

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewDeviceStorage(client *redis.Client, ttl time.Duration) *DeviceStorage {
	return &DeviceStorage{
		client: client,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// For returns the storage of one device.
func (d *DeviceStorage) For(deviceID string) player.LocalStore {
	return &deviceStore{parent: d, key: "feedbacker:device:" + deviceID}
}

func (d *DeviceStorage) ttlWithJitter() time.Duration {
	if d.ttl <= 0 {
		return 0
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	jitterMax := int64(d.ttl) / 10
	return d.ttl + time.Duration(d.rnd.Int63n(jitterMax+1))
}

type deviceStore struct {
	parent *DeviceStorage
	key    string
}

func (s *deviceStore) GetOrCreateSessionID(ctx context.Context) (string, error) {
	client := s.parent.client
	if err := client.HSetNX(ctx, s.key, "sessionId", uuid.NewString()).Err(); err != nil {
		return "", err
	}
	id, err := client.HGet(ctx, s.key, "sessionId").Result()
	if err != nil {
		return "", err
	}
	s.touch(ctx)
	return id, nil
}

func (s *deviceStore) LoadCompletedObjectIDs(ctx context.Context) ([]string, error) {
	raw, err := s.parent.client.HGet(ctx, s.key, "completed").Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

func (s *deviceStore) SaveCompletedObjectIDs(ctx context.Context, ids []string) error {
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := s.parent.client.HSet(ctx, s.key, "completed", raw).Err(); err != nil {
		return err
	}
	s.touch(ctx)
	return nil
}

func (s *deviceStore) LoadHasSubmittedPrizeEmail(ctx context.Context) (bool, error) {
	v, err := s.parent.client.HGet(ctx, s.key, "prizeEmail").Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return v == "1", nil
}

func (s *deviceStore) SaveHasSubmittedPrizeEmail(ctx context.Context, submitted bool) error {
	v := "0"
	if submitted {
		v = "1"
	}
	if err := s.parent.client.HSet(ctx, s.key, "prizeEmail", v).Err(); err != nil {
		return err
	}
	s.touch(ctx)
	return nil
}

// touch extends the device key; best effort.
func (s *deviceStore) touch(ctx context.Context) {
	if ttl := s.parent.ttlWithJitter(); ttl > 0 {
		_ = s.parent.client.Expire(ctx, s.key, ttl).Err()
	}
}
