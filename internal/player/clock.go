package player

import "time"

// Clock schedules deferred callbacks. The engine's timers (auto-advance
// countdown, controls auto-hide, tap disambiguation) all go through a Clock
// so tests can drive them deterministically.
type Clock interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a scheduled callback handle. Stop is idempotent; stopping an
// already-fired or already-stopped timer is a no-op.
type Timer interface {
	Stop()
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return realTimer{t: time.AfterFunc(d, fn)}
}

type realTimer struct {
	t *time.Timer
}

func (r realTimer) Stop() {
	r.t.Stop()
}

// NewClock returns a Clock backed by the runtime timers.
func NewClock() Clock {
	return realClock{}
}
