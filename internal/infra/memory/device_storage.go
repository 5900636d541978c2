package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"feedbacker-service/internal/player"
)

// DeviceStorage keeps device-local player data in process. It survives
// reconnects of a device but not a restart.
type DeviceStorage struct {
	mu      sync.Mutex
	devices map[string]*deviceRecord
}

type deviceRecord struct {
	sessionID string
	completed []string
	submitted bool
}

func NewDeviceStorage() *DeviceStorage {
	return &DeviceStorage{devices: make(map[string]*deviceRecord)}
}

// For returns the storage of one device.
func (d *DeviceStorage) For(deviceID string) player.LocalStore {
	return &deviceStore{parent: d, deviceID: deviceID}
}

func (d *DeviceStorage) record(deviceID string) *deviceRecord {
	rec, ok := d.devices[deviceID]
	if !ok {
		rec = &deviceRecord{}
		d.devices[deviceID] = rec
	}
	return rec
}

type deviceStore struct {
	parent   *DeviceStorage
	deviceID string
}

func (s *deviceStore) GetOrCreateSessionID(context.Context) (string, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	rec := s.parent.record(s.deviceID)
	if rec.sessionID == "" {
		rec.sessionID = uuid.NewString()
	}
	return rec.sessionID, nil
}

func (s *deviceStore) LoadCompletedObjectIDs(context.Context) ([]string, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	return slices.Clone(s.parent.record(s.deviceID).completed), nil
}

func (s *deviceStore) SaveCompletedObjectIDs(_ context.Context, ids []string) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.record(s.deviceID).completed = slices.Clone(ids)
	return nil
}

func (s *deviceStore) LoadHasSubmittedPrizeEmail(context.Context) (bool, error) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	return s.parent.record(s.deviceID).submitted, nil
}

func (s *deviceStore) SaveHasSubmittedPrizeEmail(_ context.Context, submitted bool) error {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()
	s.parent.record(s.deviceID).submitted = submitted
	return nil
}
