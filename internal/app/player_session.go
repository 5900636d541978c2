package app

import (
	"sync"

	"feedbacker-service/internal/player"
)

// PlayerSession is the live flow of one device: its state machine plus the
// navigator of the object being answered.
type PlayerSession struct {
	deviceID string
	machine  *player.Machine

	mu    sync.Mutex
	nav   *player.Navigator
	conns int
}

// NewPlayerSession wraps a machine restored for deviceID.
func NewPlayerSession(deviceID string, machine *player.Machine) *PlayerSession {
	return &PlayerSession{deviceID: deviceID, machine: machine}
}

// DeviceID identifies the device the session belongs to.
func (s *PlayerSession) DeviceID() string { return s.deviceID }

// State returns the current machine snapshot.
func (s *PlayerSession) State() player.State { return s.machine.Snapshot() }

// Subscribe streams machine snapshots. The caller must invoke cancel.
func (s *PlayerSession) Subscribe() (<-chan player.State, func()) {
	return s.machine.Subscribe()
}

// Attach counts one more connection. Only the session repository calls it.
func (s *PlayerSession) Attach() {
	s.mu.Lock()
	s.conns++
	s.mu.Unlock()
}

// Detach releases one connection and reports whether none is left.
func (s *PlayerSession) Detach() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conns > 0 {
		s.conns--
	}
	return s.conns == 0
}

// IsIdle reports whether no connection uses the session any more.
func (s *PlayerSession) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conns == 0
}
