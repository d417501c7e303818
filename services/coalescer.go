package services

import (
	"sync"
	"time"
)

// Coalescer collapses bursts of triggers into a single deferred run of
// fn. Each Trigger restarts the coalescing window; fn runs once the
// window elapses without another trigger. Stop cancels any scheduled
// run and makes further triggers no-ops.
type Coalescer struct {
	mu      sync.Mutex
	window  time.Duration
	fn      func()
	timer   *time.Timer
	stopped bool
}

func NewCoalescer(window time.Duration, fn func()) *Coalescer {
	return &Coalescer{window: window, fn: fn}
}

// Trigger schedules fn after the coalescing window, replacing any
// previously scheduled run.
func (c *Coalescer) Trigger() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.window, c.fn)
}

// Flush runs fn immediately if a run is pending.
func (c *Coalescer) Flush() {
	c.mu.Lock()
	pending := c.timer != nil && c.timer.Stop()
	c.timer = nil
	c.mu.Unlock()

	if pending {
		c.fn()
	}
}

// Stop cancels any pending run. The coalescer cannot be reused.
func (c *Coalescer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
