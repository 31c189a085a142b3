package player

// Accrual constants. Deltas of two seconds or more between consecutive time
// updates are seek jumps, not playback, and never count toward a view.
const (
	viewThresholdSeconds = 30.0
	maxContinuousDelta   = 2.0
)

// tracker accrues genuinely-played seconds, immune to scrubbing, and marks
// when the one-shot view threshold has been crossed.
type tracker struct {
	played  float64
	last    float64
	hasLast bool
	tracked bool
}

func (t *tracker) reset() {
	t.played = 0
	t.last = 0
	t.hasLast = false
	t.tracked = false
}

// observe ingests one time update. It returns true exactly once per item
// lifetime: the first update on which accrued playback reaches the view
// threshold. lastObservedTime always advances, whether or not the delta
// counted as playback.
func (t *tracker) observe(now float64, paused bool) bool {
	if !t.hasLast {
		t.last = now
		t.hasLast = true
		return false
	}

	delta := now - t.last
	t.last = now

	if paused {
		return false
	}
	if delta <= 0 || delta >= maxContinuousDelta {
		// Backward jump, duplicate update, or forward seek.
		return false
	}

	t.played += delta
	if !t.tracked && t.played >= viewThresholdSeconds {
		t.tracked = true
		return true
	}
	return false
}
