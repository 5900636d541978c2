// Package presenter drives the big-screen view: a carousel that rotates
// through every question of the event and renders its live statistics.
package presenter

import (
	"context"
	"sync"
	"time"
)

// TransitionWindow is how long a slide change is flagged for the fade.
const TransitionWindow = 300 * time.Millisecond

// Carousel holds the position in the playlist and advances it on a timer.
type Carousel struct {
	transition time.Duration

	mu            sync.Mutex
	interval      time.Duration
	length        int
	index         int
	transitioning bool

	changed chan struct{}
}

// NewCarousel returns a carousel that rotates every interval.
func NewCarousel(interval time.Duration) *Carousel {
	if interval <= 0 {
		interval = time.Second
	}
	return &Carousel{
		transition: TransitionWindow,
		interval:   interval,
		changed:    make(chan struct{}, 1),
	}
}

// Position returns the current index and whether a transition is running.
func (c *Carousel) Position() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index, c.transitioning
}

// SetInterval changes the rotation period and restarts the timer.
func (c *Carousel) SetInterval(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	same := c.interval == d
	c.interval = d
	c.mu.Unlock()
	if !same {
		c.signal()
	}
}

// SetLength tells the carousel how many slides exist. An index that fell out
// of range goes back to the first slide.
func (c *Carousel) SetLength(n int) {
	c.mu.Lock()
	same := c.length == n
	c.length = n
	if c.index >= n {
		c.index = 0
	}
	c.mu.Unlock()
	if !same {
		c.signal()
	}
}

// Run rotates until ctx is done, calling notify at both edges of every
// transition. The timer is stopped when Run returns.
func (c *Carousel) Run(ctx context.Context, notify func()) {
	ticker := time.NewTicker(c.currentInterval())
	defer ticker.Stop()

	var fade *time.Timer
	var fadeC <-chan time.Time
	defer func() {
		if fade != nil {
			fade.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.changed:
			ticker.Reset(c.currentInterval())
		case <-ticker.C:
			if fadeC != nil || !c.begin() {
				continue
			}
			notify()
			fade = time.NewTimer(c.transition)
			fadeC = fade.C
		case <-fadeC:
			fadeC = nil
			c.complete()
			notify()
		}
	}
}

// begin raises the transition flag; a playlist of one slide never rotates.
func (c *Carousel) begin() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.length <= 1 {
		return false
	}
	c.transitioning = true
	return true
}

func (c *Carousel) complete() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.transitioning = false
	if c.length == 0 {
		c.index = 0
		return
	}
	c.index = (c.index + 1) % c.length
}

func (c *Carousel) currentInterval() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.interval
}

func (c *Carousel) signal() {
	select {
	case c.changed <- struct{}{}:
	default:
	}
}
