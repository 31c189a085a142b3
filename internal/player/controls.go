package player

import (
	"log"
	"sync"
	"time"
)

// Interaction timing fixed by the player's design.
const (
	doubleTapWindow   = 300 * time.Millisecond
	skipIndicatorHold = 700 * time.Millisecond
	autoHideDelay     = 3 * time.Second
)

// SkipDirection marks which transient skip indicator is showing.
type SkipDirection int

const (
	SkipNone SkipDirection = iota
	SkipBackward
	SkipForward
)

// Controls implements the tap gesture layer and the auto-hiding chrome. A
// lone tap toggles the overlay after the double-tap window passes; two taps
// on the same half of the surface within the window skip ten seconds,
// backward on the left half and forward on the right.
type Controls struct {
	mu      sync.Mutex
	engine  *Engine
	clock   Clock
	display Display

	visible   bool
	hideTimer Timer

	tapTimer   Timer
	tapPending bool
	tapLeft    bool

	indicator      SkipDirection
	indicatorTimer Timer

	fullscreen bool
	closed     bool
}

// NewControls attaches a controls layer to an engine. display may be nil
// when the host has no fullscreen surface.
func NewControls(engine *Engine, clock Clock, display Display) *Controls {
	if clock == nil {
		clock = NewClock()
	}
	c := &Controls{
		engine:  engine,
		clock:   clock,
		display: display,
		visible: true,
	}
	engine.attachControls(c)
	return c
}

// Tap ingests a tap or click at horizontal position x on a surface of the
// given width. Taps on designated control chrome should not reach here.
func (c *Controls) Tap(x, width float64) {
	left := width > 0 && x < width/2

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.tapPending && c.tapLeft == left {
		// Second tap inside the window on the same half: a skip, not a
		// visibility toggle.
		c.tapPending = false
		if c.tapTimer != nil {
			c.tapTimer.Stop()
			c.tapTimer = nil
		}
		c.showIndicatorLocked(left)
		c.mu.Unlock()

		if left {
			c.engine.SkipBack()
		} else {
			c.engine.SkipForward()
		}
		return
	}

	if c.tapTimer != nil {
		c.tapTimer.Stop()
	}
	c.tapPending = true
	c.tapLeft = left
	c.tapTimer = c.clock.AfterFunc(doubleTapWindow, c.tapWindowElapsed)
	c.mu.Unlock()
}

// tapWindowElapsed fires when a tap stayed single: toggle the overlay.
func (c *Controls) tapWindowElapsed() {
	c.mu.Lock()
	if c.closed || !c.tapPending {
		c.mu.Unlock()
		return
	}
	c.tapPending = false
	c.tapTimer = nil
	c.mu.Unlock()

	c.toggleVisibility()
}

func (c *Controls) toggleVisibility() {
	c.mu.Lock()
	if c.visible {
		c.visible = false
		c.stopHideTimerLocked()
		c.mu.Unlock()
		return
	}
	c.visible = true
	c.mu.Unlock()
	c.restartHideTimer()
}

// Show reveals the overlay and restarts the auto-hide timer.
func (c *Controls) Show() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.visible = true
	c.mu.Unlock()
	c.restartHideTimer()
}

// Poke marks user activity: keep the overlay up and restart the countdown
// to hiding it.
func (c *Controls) Poke() {
	c.Show()
}

func (c *Controls) restartHideTimer() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopHideTimerLocked()
	if c.closed {
		return
	}
	c.hideTimer = c.clock.AfterFunc(autoHideDelay, c.hideElapsed)
}

func (c *Controls) hideElapsed() {
	// Hiding is suppressed while paused, erroring, or prompting; the query
	// happens before taking the controls lock to keep lock order one-way.
	mayHide := c.engine.chromeMayHide()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.hideTimer = nil
	if c.closed || !mayHide {
		return
	}
	c.visible = false
}

func (c *Controls) stopHideTimerLocked() {
	if c.hideTimer != nil {
		c.hideTimer.Stop()
		c.hideTimer = nil
	}
}

func (c *Controls) showIndicatorLocked(left bool) {
	if left {
		c.indicator = SkipBackward
	} else {
		c.indicator = SkipForward
	}
	if c.indicatorTimer != nil {
		c.indicatorTimer.Stop()
	}
	c.indicatorTimer = c.clock.AfterFunc(skipIndicatorHold, c.indicatorElapsed)
}

func (c *Controls) indicatorElapsed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indicator = SkipNone
	c.indicatorTimer = nil
}

// ToggleFullscreen enters or leaves fullscreen, locking the display to
// landscape while fullscreen. Orientation failures are ignored.
func (c *Controls) ToggleFullscreen() {
	c.mu.Lock()
	if c.closed || c.display == nil {
		c.mu.Unlock()
		return
	}
	entering := !c.fullscreen
	display := c.display
	c.mu.Unlock()

	if entering {
		if err := display.EnterFullscreen(); err != nil {
			log.Printf("[controls] fullscreen request failed: %v", err)
			return
		}
		if err := display.LockLandscape(); err != nil {
			log.Printf("[controls] orientation lock failed: %v", err)
		}
	} else {
		display.UnlockOrientation()
		display.ExitFullscreen()
	}

	c.mu.Lock()
	c.fullscreen = entering
	c.mu.Unlock()
}

// playbackResumed restarts the auto-hide countdown when playback begins.
func (c *Controls) playbackResumed() {
	c.restartHideTimer()
}

// resetForSource invalidates gesture and chrome timers on a source change.
func (c *Controls) resetForSource() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tapTimer != nil {
		c.tapTimer.Stop()
		c.tapTimer = nil
	}
	c.tapPending = false
	if c.indicatorTimer != nil {
		c.indicatorTimer.Stop()
		c.indicatorTimer = nil
	}
	c.indicator = SkipNone
	c.stopHideTimerLocked()
	c.visible = true
}

// teardown stops every timer permanently.
func (c *Controls) teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.tapTimer != nil {
		c.tapTimer.Stop()
		c.tapTimer = nil
	}
	c.tapPending = false
	if c.indicatorTimer != nil {
		c.indicatorTimer.Stop()
		c.indicatorTimer = nil
	}
	c.stopHideTimerLocked()
}

// Visible reports whether the control overlay is showing.
func (c *Controls) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// SkipIndicator reports the transient double-tap skip indicator, if any.
func (c *Controls) SkipIndicator() SkipDirection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.indicator
}

// Fullscreen reports whether the player is presented fullscreen.
func (c *Controls) Fullscreen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fullscreen
}
