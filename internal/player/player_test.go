package player

import (
	"sync"
	"time"
)

// fakeClock drives timers deterministically. advance fires due timers in
// deadline order, including timers scheduled by earlier callbacks.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	when    time.Duration
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() { t.stopped = true }

func (c *fakeClock) AfterFunc(d time.Duration, fn func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{when: c.now + d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	for {
		var next *fakeTimer
		for _, t := range c.timers {
			if t.stopped || t.fired || t.when > target {
				continue
			}
			if next == nil || t.when < next.when {
				next = t
			}
		}
		if next == nil {
			break
		}
		c.now = next.when
		next.fired = true
		fn := next.fn
		c.mu.Unlock()
		fn()
		c.mu.Lock()
	}
	c.now = target
	c.mu.Unlock()
}

// fakeMedia is a scriptable media backend.
type fakeMedia struct {
	src      string
	playing  bool
	current  float64
	duration float64
	ready    int
	volume   float64
	muted    bool

	playErr    error
	loads      []string
	seeks      []float64
	playCalls  int
	pauseCalls int
}

func (m *fakeMedia) Load(src string) {
	m.src = src
	m.loads = append(m.loads, src)
	m.playing = false
	m.current = 0
}

func (m *fakeMedia) Play() error {
	m.playCalls++
	if m.playErr != nil {
		return m.playErr
	}
	m.playing = true
	return nil
}

func (m *fakeMedia) Pause() {
	m.pauseCalls++
	m.playing = false
}

func (m *fakeMedia) Seek(seconds float64) {
	m.seeks = append(m.seeks, seconds)
	m.current = seconds
}

func (m *fakeMedia) CurrentTime() float64 { return m.current }
func (m *fakeMedia) Duration() float64    { return m.duration }
func (m *fakeMedia) ReadyState() int      { return m.ready }
func (m *fakeMedia) SetVolume(v float64)  { m.volume = v }
func (m *fakeMedia) SetMuted(muted bool)  { m.muted = muted }

// fakeDisplay records fullscreen and orientation calls.
type fakeDisplay struct {
	fullscreen bool
	locked     bool
	enterErr   error
	lockErr    error
}

func (d *fakeDisplay) EnterFullscreen() error {
	if d.enterErr != nil {
		return d.enterErr
	}
	d.fullscreen = true
	return nil
}

func (d *fakeDisplay) ExitFullscreen() { d.fullscreen = false }

func (d *fakeDisplay) LockLandscape() error {
	if d.lockErr != nil {
		return d.lockErr
	}
	d.locked = true
	return nil
}

func (d *fakeDisplay) UnlockOrientation() { d.locked = false }
