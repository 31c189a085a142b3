package player

import (
	"log"
	"math"
	"sync"
)

// State identifies the engine's lifecycle phase.
type State int

const (
	StateIdle State = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateEnded:
		return "ended"
	case StateError:
		return "error"
	default:
		return "unknown"
	}
}

// EndedMode distinguishes what the end-of-stream overlay offers.
type EndedMode int

const (
	EndedNone EndedMode = iota
	EndedCountdown
	EndedReplay
)

// Playback constants fixed by the player's interaction design.
const (
	skipSeconds          = 10.0
	resumeMinSeconds     = 5.0
	resumeMaxFraction    = 0.8
	defaultInitialVolume = 1.0
)

// Options is the embedding contract: everything a host supplies when it
// mounts a player.
type Options struct {
	// Source is the stream URL for the current item.
	Source string
	// ItemID keys the persisted resume position. Empty disables
	// persistence and the resume prompt for this session.
	ItemID string
	// Qualities is the static, ordered list of variant labels. Empty means
	// only the primary source exists.
	Qualities []string
	// SourceForQuality builds the stream URL for a variant label. Nil
	// disables quality switching.
	SourceForQuality func(quality string) string
	// Autoplay indicates the embedding context permits playback to begin
	// as soon as metadata is ready.
	Autoplay bool

	HasNext     bool
	HasPrevious bool
	OnNext      func()
	OnPrevious  func()
	// OnView fires once per item when 30 seconds of genuine playback have
	// accrued. Errors are swallowed; view tracking never disturbs playback.
	OnView func() error
	// OnCountdownTick reports auto-advance seconds remaining for display.
	OnCountdownTick func(remaining int)
}

// Engine wraps a single media backend and owns the playback state machine.
// Media events are ingested through one method per event type; user intent
// arrives through the public operations. No public operation ever returns an
// error; failures become state transitions or are absorbed.
type Engine struct {
	mu     sync.Mutex
	media  Media
	store  *Store
	clock  Clock
	opts   Options
	closed bool

	// pending holds host callbacks queued while the lock was held; unlock
	// runs them after release so they can safely call back into the engine.
	pending []func()

	state       State
	currentTime float64
	duration    float64
	seeking     bool
	endedMode   EndedMode
	lastErr     error

	volume float64
	muted  bool

	// playIntent is whether playback should be running once the backend
	// has data; pendingPlay marks a play request deferred on readiness.
	playIntent  bool
	pendingPlay bool

	quality string

	// Quality switches restore position and intent across the source swap.
	restorePending bool
	restoreTime    float64
	restorePlaying bool

	// Resume prompt state. promptShown prevents the prompt from
	// reappearing for an item once dismissed in this session.
	promptVisible bool
	promptPos     float64
	promptShown   map[string]bool

	accrual  tracker
	advance  *countdown
	controls *Controls
}

// New constructs an engine around a media backend. A nil store disables
// persistence; a nil clock uses real timers. When opts.Source is set the
// engine immediately begins loading it.
func New(media Media, store *Store, clock Clock, opts Options) *Engine {
	if store == nil {
		store = NewStore("")
	}
	if clock == nil {
		clock = NewClock()
	}
	e := &Engine{
		media:       media,
		store:       store,
		clock:       clock,
		state:       StateIdle,
		duration:    math.NaN(),
		promptShown: make(map[string]bool),
	}
	e.advance = newCountdown(clock, e.advanceFired, e.advanceTicked)

	e.mu.Lock()
	defer e.unlock()
	e.opts = opts
	if opts.Source != "" {
		e.loadLocked(opts.Source, opts.ItemID, opts.Autoplay, false)
	}
	return e
}

func (e *Engine) enqueue(fn func()) { e.pending = append(e.pending, fn) }

// unlock releases the engine lock and then runs queued callbacks in order.
func (e *Engine) unlock() {
	actions := e.pending
	e.pending = nil
	e.mu.Unlock()
	for _, fn := range actions {
		fn()
	}
}

// ---- source lifecycle ----

// Update replaces the embedding options and loads the new source. This is
// the universal cancellation point: timers stop and per-item trackers reset
// before any event can touch stale state.
func (e *Engine) Update(opts Options) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	e.opts = opts
	e.quality = ""
	e.loadLocked(opts.Source, opts.ItemID, opts.Autoplay, false)
}

// SetSource switches to a new source and item, keeping the current
// callbacks and quality list.
func (e *Engine) SetSource(src, itemID string, autoplay bool) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	e.opts.Source = src
	e.opts.ItemID = itemID
	e.quality = ""
	e.loadLocked(src, itemID, autoplay, false)
}

// loadLocked performs the source-change transition into Loading.
// keepPosition marks a quality switch: the accrual tracker still resets, but
// the resume prompt is skipped in favor of restoring the captured position.
func (e *Engine) loadLocked(src, itemID string, autoplay, keepPosition bool) {
	e.advance.cancel()
	e.accrual.reset()

	e.state = StateLoading
	e.currentTime = 0
	e.duration = math.NaN()
	e.seeking = false
	e.lastErr = nil
	e.endedMode = EndedNone
	e.pendingPlay = false
	e.playIntent = false
	e.promptVisible = false
	e.promptPos = 0

	// Re-apply the device-wide persisted volume and mute.
	e.volume = e.store.Volume(defaultInitialVolume)
	e.muted = e.store.Muted(false)
	e.media.SetVolume(e.volume)
	e.media.SetMuted(e.muted)

	if keepPosition {
		e.playIntent = e.restorePlaying
	} else {
		e.restorePending = false
		if itemID != "" && !e.promptShown[itemID] {
			if pos, ok := e.store.Progress(itemID); ok && pos > resumeMinSeconds {
				e.promptVisible = true
				e.promptPos = pos
			}
		}
		if !e.promptVisible {
			e.playIntent = autoplay
		}
	}

	e.media.Load(src)

	if c := e.controls; c != nil {
		e.enqueue(c.resetForSource)
	}
}

// SetQuality swaps to another pre-encoded variant, preserving position and
// play/pause intent across the source change.
func (e *Engine) SetQuality(label string) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.opts.SourceForQuality == nil || label == e.quality {
		return
	}
	found := false
	for _, q := range e.opts.Qualities {
		if q == label {
			found = true
			break
		}
	}
	if !found {
		return
	}
	src := e.opts.SourceForQuality(label)
	if src == "" {
		return
	}

	e.quality = label
	e.restorePending = true
	e.restoreTime = e.currentTime
	e.restorePlaying = e.playIntent
	e.opts.Source = src
	e.loadLocked(src, e.opts.ItemID, false, true)
}

// Close tears the session down: all timers stop and later events are
// ignored. The media backend itself belongs to the host.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.unlock()
	e.closed = true
	e.advance.cancel()
	if c := e.controls; c != nil {
		e.enqueue(c.teardown)
	}
}

// ---- media event ingestion ----

// OnLoadedMetadata ingests the backend's metadata-ready signal.
func (e *Engine) OnLoadedMetadata(duration float64) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state == StateError {
		return
	}
	e.duration = duration

	if e.restorePending {
		e.restorePending = false
		target := clamp(e.restoreTime, 0, duration)
		e.currentTime = target
		e.media.Seek(target)
	}

	if e.promptVisible {
		// Hold at Paused until the viewer picks Continue or Start Over.
		e.state = StatePaused
		return
	}
	if e.playIntent {
		e.attemptPlayLocked()
		return
	}
	e.state = StatePaused
}

// OnTimeUpdate ingests a playback position report.
func (e *Engine) OnTimeUpdate(t float64) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state == StateError || e.state == StateEnded {
		return
	}
	e.currentTime = t
	e.seeking = false

	crossed := e.accrual.observe(t, e.state != StatePlaying)
	if crossed && e.opts.OnView != nil {
		onView := e.opts.OnView
		e.enqueue(func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("[player] view callback panic: %v", r)
				}
			}()
			if err := onView(); err != nil {
				log.Printf("[player] view callback failed: %v", err)
			}
		})
	}

	// Persist resume position only inside the resume window, so prompts
	// never appear for barely-started or nearly-finished items.
	if e.opts.ItemID != "" && !math.IsNaN(e.duration) && e.duration > 0 {
		if t > resumeMinSeconds && t < resumeMaxFraction*e.duration {
			e.store.SaveProgress(e.opts.ItemID, t)
		}
	}
}

// OnWaiting ingests a buffering stall: not enough data to continue. The
// loading overlay shows but the play/pause intent survives the stall.
func (e *Engine) OnWaiting() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	if e.state == StatePlaying || e.state == StatePaused {
		e.state = StateLoading
	}
}

// OnCanPlay ingests the backend's data-available signal, completing any
// deferred play request and ending a stall.
func (e *Engine) OnCanPlay() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state != StateLoading || math.IsNaN(e.duration) {
		return
	}
	if e.promptVisible {
		e.state = StatePaused
		return
	}
	if e.pendingPlay || e.playIntent {
		e.pendingPlay = false
		e.attemptPlayLocked()
		return
	}
	e.state = StatePaused
}

// OnPlaying ingests the backend's playback-started confirmation.
func (e *Engine) OnPlaying() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state == StateError || e.state == StateEnded {
		return
	}
	e.playIntent = true
	e.state = StatePlaying
	if c := e.controls; c != nil {
		e.enqueue(c.playbackResumed)
	}
}

// OnPause ingests a backend-initiated pause.
func (e *Engine) OnPause() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state != StatePlaying {
		return
	}
	e.playIntent = false
	e.state = StatePaused
}

// OnEnded ingests natural end of stream.
func (e *Engine) OnEnded() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state == StateError {
		return
	}
	e.state = StateEnded
	e.playIntent = false
	e.pendingPlay = false

	// A finished item never prompts to resume again.
	e.store.DeleteProgress(e.opts.ItemID)

	if e.opts.HasNext && e.opts.OnNext != nil {
		e.endedMode = EndedCountdown
		// Started via the queue: the initial tick calls back into the engine.
		e.enqueue(func() { e.advance.start(autoAdvanceSeconds) })
	} else {
		e.endedMode = EndedReplay
	}
}

// OnError ingests an unrecoverable decode or network failure.
func (e *Engine) OnError(err error) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	log.Printf("[player] media error: %v", err)
	e.state = StateError
	e.lastErr = err
	e.playIntent = false
	e.pendingPlay = false
	e.advance.cancel()
}

// ---- user operations ----

// Play requests playback. While the backend lacks data the request is
// deferred and completed by the next OnCanPlay. From Ended it replays.
func (e *Engine) Play() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state == StateError || e.promptVisible {
		return
	}
	if e.state == StateEnded {
		e.replayLocked()
		return
	}
	e.attemptPlayLocked()
}

// Pause halts playback and clears any pending play intent.
func (e *Engine) Pause() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state == StateError || e.state == StateEnded {
		return
	}
	e.media.Pause()
	e.playIntent = false
	e.pendingPlay = false
	if e.state == StatePlaying {
		e.state = StatePaused
	}
}

// TogglePlay flips between playing and paused.
func (e *Engine) TogglePlay() {
	e.mu.Lock()
	playing := e.playIntent
	e.unlock()
	if playing {
		e.Pause()
	} else {
		e.Play()
	}
}

// Seek jumps to the given position, clamped to the known duration. Seeking
// is transient and never changes the play/pause state.
func (e *Engine) Seek(t float64) {
	e.mu.Lock()
	defer e.unlock()
	e.seekLocked(t)
}

func (e *Engine) seekLocked(t float64) {
	if e.closed || e.state == StateError {
		return
	}
	target := t
	if !math.IsNaN(e.duration) {
		target = clamp(t, 0, e.duration)
	} else if target < 0 {
		target = 0
	}
	e.seeking = true
	e.currentTime = target
	e.media.Seek(target)
}

// SkipForward seeks ten seconds ahead.
func (e *Engine) SkipForward() {
	e.mu.Lock()
	defer e.unlock()
	e.seekLocked(e.currentTime + skipSeconds)
}

// SkipBack seeks ten seconds back.
func (e *Engine) SkipBack() {
	e.mu.Lock()
	defer e.unlock()
	e.seekLocked(e.currentTime - skipSeconds)
}

// SetVolume applies and persists a volume in [0,1].
func (e *Engine) SetVolume(v float64) {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	v = clamp(v, 0, 1)
	e.volume = v
	e.media.SetVolume(v)
	e.store.SetVolume(v)
}

// ToggleMute flips and persists the mute flag.
func (e *Engine) ToggleMute() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed {
		return
	}
	e.muted = !e.muted
	e.media.SetMuted(e.muted)
	e.store.SetMuted(e.muted)
}

// Retry re-initiates loading from the same source after an error. The
// resume logic re-evaluates, so a dismissed prompt stays dismissed but an
// undismissed one reappears.
func (e *Engine) Retry() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state != StateError {
		return
	}
	e.loadLocked(e.opts.Source, e.opts.ItemID, true, false)
}

// ResumeContinue accepts the resume prompt: seek to the saved position and
// play.
func (e *Engine) ResumeContinue() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || !e.promptVisible {
		return
	}
	e.promptVisible = false
	e.promptShown[e.opts.ItemID] = true
	e.seekLocked(e.promptPos)
	e.attemptPlayLocked()
}

// ResumeStartOver declines the resume prompt: forget the saved position and
// play from the beginning.
func (e *Engine) ResumeStartOver() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || !e.promptVisible {
		return
	}
	e.promptVisible = false
	e.promptShown[e.opts.ItemID] = true
	e.store.DeleteProgress(e.opts.ItemID)
	e.seekLocked(0)
	e.attemptPlayLocked()
}

// Replay restarts the finished item from the beginning.
func (e *Engine) Replay() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.state != StateEnded {
		return
	}
	e.replayLocked()
}

func (e *Engine) replayLocked() {
	e.advance.cancel()
	e.endedMode = EndedNone
	e.accrual.reset()
	e.state = StatePaused
	e.seekLocked(0)
	e.attemptPlayLocked()
}

// CancelAutoAdvance stops the countdown; the overlay falls back to replay.
func (e *Engine) CancelAutoAdvance() {
	e.mu.Lock()
	defer e.unlock()
	if e.closed || e.endedMode != EndedCountdown {
		return
	}
	e.advance.cancel()
	e.endedMode = EndedReplay
}

// AdvanceNow skips the countdown and moves to the next item immediately.
func (e *Engine) AdvanceNow() {
	e.mu.Lock()
	if e.closed || e.endedMode != EndedCountdown {
		e.unlock()
		return
	}
	e.endedMode = EndedNone
	e.unlock()
	e.advance.skip()
}

// Previous invokes the host's previous-item callback, if any.
func (e *Engine) Previous() {
	e.mu.Lock()
	cb := e.opts.OnPrevious
	has := e.opts.HasPrevious
	e.unlock()
	if has && cb != nil {
		cb()
	}
}

// ---- countdown plumbing ----

func (e *Engine) advanceFired() {
	e.mu.Lock()
	e.endedMode = EndedNone
	cb := e.opts.OnNext
	closed := e.closed
	e.unlock()
	if cb != nil && !closed {
		cb()
	}
}

func (e *Engine) advanceTicked(remaining int) {
	e.mu.Lock()
	cb := e.opts.OnCountdownTick
	closed := e.closed
	e.unlock()
	if cb != nil && !closed {
		cb(remaining)
	}
}

// attemptPlayLocked carries out a play request, deferring it when the
// backend lacks data. An immediate rejection (autoplay policy) is expected
// and leaves the engine paused without surfacing an error.
func (e *Engine) attemptPlayLocked() {
	if e.media.ReadyState() < HaveFutureData {
		e.playIntent = true
		e.pendingPlay = true
		e.state = StateLoading
		return
	}
	if err := e.media.Play(); err != nil {
		e.playIntent = false
		e.pendingPlay = false
		e.state = StatePaused
		return
	}
	e.playIntent = true
	e.pendingPlay = false
	e.state = StatePlaying
	if c := e.controls; c != nil {
		e.enqueue(c.playbackResumed)
	}
}

// ---- derived state ----

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.unlock()
	return e.state
}

func (e *Engine) Seeking() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.seeking
}

func (e *Engine) CurrentTime() float64 {
	e.mu.Lock()
	defer e.unlock()
	return e.currentTime
}

func (e *Engine) Duration() float64 {
	e.mu.Lock()
	defer e.unlock()
	return e.duration
}

// ProgressPercent is the playback position as a percentage, zero while the
// duration is unknown.
func (e *Engine) ProgressPercent() float64 {
	e.mu.Lock()
	defer e.unlock()
	if math.IsNaN(e.duration) || e.duration <= 0 {
		return 0
	}
	return e.currentTime / e.duration * 100
}

// FormattedTime is the current position as a display clock.
func (e *Engine) FormattedTime() string {
	e.mu.Lock()
	defer e.unlock()
	return formatClock(e.currentTime)
}

// FormattedDuration is the total duration as a display clock.
func (e *Engine) FormattedDuration() string {
	e.mu.Lock()
	defer e.unlock()
	if math.IsNaN(e.duration) {
		return formatClock(0)
	}
	return formatClock(e.duration)
}

func (e *Engine) Quality() string {
	e.mu.Lock()
	defer e.unlock()
	return e.quality
}

func (e *Engine) Qualities() []string {
	e.mu.Lock()
	defer e.unlock()
	out := make([]string, len(e.opts.Qualities))
	copy(out, e.opts.Qualities)
	return out
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.unlock()
	return e.volume
}

func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.muted
}

// ResumePromptVisible reports whether the continue-watching choice is up.
func (e *Engine) ResumePromptVisible() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.promptVisible
}

// ResumePosition is the saved position offered by the resume prompt.
func (e *Engine) ResumePosition() float64 {
	e.mu.Lock()
	defer e.unlock()
	return e.promptPos
}

func (e *Engine) EndedState() EndedMode {
	e.mu.Lock()
	defer e.unlock()
	return e.endedMode
}

// AdvanceRemaining is the seconds left on the auto-advance countdown.
func (e *Engine) AdvanceRemaining() int {
	return e.advance.seconds()
}

func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.unlock()
	return e.lastErr
}

// chromeMayHide reports whether the controls overlay is allowed to
// auto-hide: only during unobstructed playback.
func (e *Engine) chromeMayHide() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.state == StatePlaying && !e.promptVisible
}

func (e *Engine) attachControls(c *Controls) {
	e.mu.Lock()
	defer e.unlock()
	e.controls = c
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(hi) {
		hi = v
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
