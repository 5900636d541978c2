package domain

import (
	"sync"
	"time"
)

// MonotonicClock hands out strictly increasing millisecond timestamps, even
// when the wall clock stalls or steps backwards.
type MonotonicClock struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewMonotonicClock(now func() time.Time) *MonotonicClock {
	if now == nil {
		now = time.Now
	}
	return &MonotonicClock{now: now}
}

// Next returns the next timestamp.
func (c *MonotonicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	ts := c.now().UnixMilli()
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}
