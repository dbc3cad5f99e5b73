package sim

import (
	"sync"
	"time"
)

// Clock supplies wall-clock readings to the frame loop.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real monotonic clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ManualClock is a controllable clock for tests.
type ManualClock struct {
	mu  sync.RWMutex
	now time.Time
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.now
}

func (c *ManualClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// FrameTimer turns clock readings into per-frame deltas in seconds. The
// first Tick after construction or Reset returns 0.
type FrameTimer struct {
	clock   Clock
	last    time.Time
	started bool
}

func NewFrameTimer(clock Clock) *FrameTimer {
	if clock == nil {
		clock = SystemClock{}
	}
	return &FrameTimer{clock: clock}
}

func (t *FrameTimer) Tick() float64 {
	now := t.clock.Now()
	if !t.started {
		t.started = true
		t.last = now
		return 0
	}
	delta := now.Sub(t.last).Seconds()
	t.last = now
	if delta < 0 {
		return 0
	}
	return delta
}

// Reset forgets the previous reading so time spent paused is not banked.
func (t *FrameTimer) Reset() {
	t.started = false
}
