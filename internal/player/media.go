package player

// Readiness levels reported by a media backend, lowest to highest.
const (
	HaveNothing = iota
	HaveMetadata
	HaveCurrentData
	HaveFutureData
	HaveEnoughData
)

// Media is the playback backend the engine drives. Calls are fire-and-forget
// against the underlying decoder; outcomes come back through the engine's
// event-ingestion methods (OnLoadedMetadata, OnTimeUpdate, ...).
type Media interface {
	// Load points the backend at a new source and begins fetching it.
	Load(src string)
	// Play requests playback. A returned error means the request was
	// rejected (for example by an autoplay policy); it is recoverable.
	Play() error
	Pause()
	// Seek jumps to the given position in seconds.
	Seek(seconds float64)
	CurrentTime() float64
	// Duration reports the media duration in seconds, or NaN before
	// metadata has loaded.
	Duration() float64
	ReadyState() int
	SetVolume(v float64)
	SetMuted(muted bool)
}

// Display handles fullscreen presentation and orientation locking for the
// controls layer. Both lock calls are best effort.
type Display interface {
	EnterFullscreen() error
	ExitFullscreen()
	LockLandscape() error
	UnlockOrientation()
}
