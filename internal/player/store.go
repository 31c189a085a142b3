package player

import (
	"encoding/json"
	"os"
	"sync"
)

// storedState is the on-disk layout of the player's durable state. Volume
// and mute are global; resume positions are keyed by item id.
type storedState struct {
	Volume   *float64           `json:"volume,omitempty"`
	Muted    *bool              `json:"muted,omitempty"`
	Progress map[string]float64 `json:"progressByItem"`
}

// Store is the durable key-value state shared by every player on a device:
// last volume, mute flag, and per-item resume positions. Reads never fail; a
// missing or unreadable file yields the caller's default. Writes are best
// effort: a failed persist keeps the in-memory value for the session and is
// otherwise swallowed.
type Store struct {
	mu    sync.Mutex
	path  string // empty disables persistence entirely
	state storedState
}

// NewStore opens the state file at path, or an in-memory-only store when
// path is empty. Corrupt or unreadable files degrade to empty state.
func NewStore(path string) *Store {
	s := &Store{path: path, state: storedState{Progress: make(map[string]float64)}}
	if path == "" {
		return s
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return s
	}
	var loaded storedState
	if err := json.Unmarshal(data, &loaded); err != nil {
		return s
	}
	if loaded.Progress == nil {
		loaded.Progress = make(map[string]float64)
	}
	s.state = loaded
	return s
}

// Volume returns the stored volume, or def when none has been saved.
func (s *Store) Volume(def float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Volume == nil {
		return def
	}
	return *s.state.Volume
}

func (s *Store) SetVolume(v float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Volume = &v
	s.persistLocked()
}

// Muted returns the stored mute flag, or def when none has been saved.
func (s *Store) Muted(def bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Muted == nil {
		return def
	}
	return *s.state.Muted
}

func (s *Store) SetMuted(muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Muted = &muted
	s.persistLocked()
}

// Progress returns the saved resume position for an item.
func (s *Store) Progress(itemID string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pos, ok := s.state.Progress[itemID]
	return pos, ok
}

// SaveProgress records the resume position for one item. The mutation is
// applied to the live map under the lock, never to a caller-captured
// snapshot, so rapid writes for different items cannot clobber each other.
func (s *Store) SaveProgress(itemID string, position float64) {
	if itemID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Progress[itemID] = position
	s.persistLocked()
}

// DeleteProgress removes the resume position for one item; missing entries
// are a no-op.
func (s *Store) DeleteProgress(itemID string) {
	if itemID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.state.Progress, itemID)
	s.persistLocked()
}

func (s *Store) persistLocked() {
	if s.path == "" {
		return
	}
	data, err := json.Marshal(s.state)
	if err != nil {
		return
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, s.path)
}
