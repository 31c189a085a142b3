package player

import (
	"sync"
	"time"
)

// autoAdvanceSeconds is the countdown length after a stream ends naturally.
const autoAdvanceSeconds = 10

// countdown owns the auto-advance timer. It ticks once per second from its
// starting value to zero and then fires exactly once. cancel is idempotent;
// at most one tick is ever scheduled at a time.
type countdown struct {
	mu        sync.Mutex
	clock     Clock
	timer     Timer
	remaining int
	active    bool
	fired     bool

	// fire advances to the next item; tick reports seconds remaining.
	// Both are invoked without the countdown lock held.
	fire func()
	tick func(remaining int)
}

func newCountdown(clock Clock, fire func(), tick func(int)) *countdown {
	return &countdown{clock: clock, fire: fire, tick: tick}
}

// start begins a fresh countdown, replacing any outstanding one.
func (c *countdown) start(seconds int) {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.remaining = seconds
	c.active = true
	c.fired = false
	c.timer = c.clock.AfterFunc(time.Second, c.step)
	tick := c.tick
	remaining := c.remaining
	c.mu.Unlock()

	if tick != nil {
		tick(remaining)
	}
}

// cancel stops the countdown without firing. Safe to call at any time,
// including when no countdown is running.
func (c *countdown) cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// skip stops the countdown and fires immediately, if it has not fired yet.
func (c *countdown) skip() {
	c.mu.Lock()
	if !c.active || c.fired {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.fired = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	fire := c.fire
	c.mu.Unlock()

	if fire != nil {
		fire()
	}
}

// running reports whether a countdown is in progress.
func (c *countdown) running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// seconds returns the seconds remaining on the current countdown.
func (c *countdown) seconds() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

func (c *countdown) step() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.remaining--
	remaining := c.remaining
	tick := c.tick

	var fire func()
	if c.remaining <= 0 {
		c.active = false
		c.fired = true
		c.timer = nil
		fire = c.fire
	} else {
		c.timer = c.clock.AfterFunc(time.Second, c.step)
	}
	c.mu.Unlock()

	if tick != nil {
		tick(remaining)
	}
	if fire != nil {
		fire()
	}
}
