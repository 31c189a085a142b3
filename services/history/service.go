package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"mediavault/models"
)

var (
	ErrStorageDirRequired = errors.New("storage directory not provided")
	ErrItemIDRequired     = errors.New("item id is required")
	ErrInvalidProgress    = errors.New("position and duration must be non-negative")
)

// Positions below this are treated as "barely started" and never stored;
// positions past this fraction of the duration count as finished and clear
// the stored entry. Mirrors the resume window the player enforces.
const (
	minResumeSeconds  = 5.0
	maxResumeFraction = 0.8
)

// Service persists playback progress so partially watched items can surface
// in a continue-watching list and resume across devices.
type Service struct {
	mu       sync.RWMutex
	path     string
	progress map[string]models.PlaybackProgress
}

// NewService constructs a history service backed by a JSON file on disk.
func NewService(storageDir string) (*Service, error) {
	if strings.TrimSpace(storageDir) == "" {
		return nil, ErrStorageDirRequired
	}
	if err := os.MkdirAll(storageDir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	svc := &Service{
		path:     filepath.Join(storageDir, "playback_progress.json"),
		progress: make(map[string]models.PlaybackProgress),
	}
	if err := svc.load(); err != nil {
		return nil, err
	}
	return svc, nil
}

// Update records a progress report. Reports inside the resume window replace
// the stored entry; reports at or past the window's end delete it (the item
// counts as finished); reports before the window start are ignored.
func (s *Service) Update(update models.ProgressUpdate) (models.PlaybackProgress, error) {
	itemID := strings.TrimSpace(update.ItemID)
	if itemID == "" {
		return models.PlaybackProgress{}, ErrItemIDRequired
	}
	if update.Position < 0 || update.Duration < 0 {
		return models.PlaybackProgress{}, ErrInvalidProgress
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if update.Duration > 0 && update.Position >= maxResumeFraction*update.Duration {
		delete(s.progress, itemID)
		s.persistLocked()
		return models.PlaybackProgress{ItemID: itemID}, nil
	}
	if update.Position <= minResumeSeconds {
		if existing, ok := s.progress[itemID]; ok {
			return existing, nil
		}
		return models.PlaybackProgress{ItemID: itemID}, nil
	}

	entry := models.PlaybackProgress{
		ItemID:    itemID,
		Position:  update.Position,
		Duration:  update.Duration,
		UpdatedAt: time.Now().UTC(),
	}
	if update.Duration > 0 {
		entry.PercentWatched = update.Position / update.Duration * 100
	}
	s.progress[itemID] = entry
	s.persistLocked()
	return entry, nil
}

// Get returns the stored progress for an item, or nil when none exists.
func (s *Service) Get(itemID string) (*models.PlaybackProgress, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return nil, ErrItemIDRequired
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if entry, ok := s.progress[itemID]; ok {
		copy := entry
		return &copy, nil
	}
	return nil, nil
}

// List returns all stored progress entries, most recently updated first.
func (s *Service) List() ([]models.PlaybackProgress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]models.PlaybackProgress, 0, len(s.progress))
	for _, entry := range s.progress {
		items = append(items, entry)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].UpdatedAt.After(items[j].UpdatedAt)
	})
	return items, nil
}

// Delete removes the stored progress for an item. Deleting a missing entry
// is a no-op.
func (s *Service) Delete(itemID string) error {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return ErrItemIDRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.progress, itemID)
	s.persistLocked()
	return nil
}

func (s *Service) load() error {
	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open progress file: %w", err)
	}
	defer f.Close()

	if err := json.NewDecoder(f).Decode(&s.progress); err != nil {
		return fmt.Errorf("decode progress file: %w", err)
	}
	return nil
}

// persistLocked writes the progress map to disk; callers must hold s.mu.
// A failed write keeps the in-memory state authoritative for this process.
func (s *Service) persistLocked() {
	tmp := s.path + ".tmp"
	data, err := json.MarshalIndent(s.progress, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return
	}
	_ = os.Rename(tmp, s.path)
}
