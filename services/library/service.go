package library

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"mediavault/models"
)

var (
	ErrDatabasePathRequired = errors.New("database path not provided")
	ErrItemNotFound         = errors.New("item not found")
	ErrTitleRequired        = errors.New("item title is required")
	ErrFilePathRequired     = errors.New("item file path is required")
)

// Service is the item registry: titles, backing files, quality variants and
// the persistent per-item view counter.
type Service struct {
	db *sql.DB
}

// NewService opens (or creates) the library database at dbPath.
func NewService(dbPath string) (*Service, error) {
	if strings.TrimSpace(dbPath) == "" {
		return nil, ErrDatabasePathRequired
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create library dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open library db: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Service{db: db}, nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

// Add registers a new item and returns it with its generated id.
func (s *Service) Add(payload models.NewItemPayload) (models.Item, error) {
	if strings.TrimSpace(payload.Title) == "" {
		return models.Item{}, ErrTitleRequired
	}
	if strings.TrimSpace(payload.FilePath) == "" {
		return models.Item{}, ErrFilePathRequired
	}

	item := models.Item{
		ID:            uuid.NewString(),
		Title:         payload.Title,
		SeriesID:      payload.SeriesID,
		SeasonNumber:  payload.SeasonNumber,
		EpisodeNumber: payload.EpisodeNumber,
		FilePath:      payload.FilePath,
		ThumbnailPath: payload.ThumbnailPath,
		Duration:      payload.Duration,
		Variants:      payload.Variants,
		AddedAt:       time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.Item{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.Exec(`
		INSERT INTO items (id, title, series_id, season_number, episode_number, file_path, thumbnail_path, duration, views, added_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		item.ID, item.Title, nullString(item.SeriesID), item.SeasonNumber, item.EpisodeNumber,
		item.FilePath, nullString(item.ThumbnailPath), item.Duration, item.AddedAt.Unix(),
	)
	if err != nil {
		return models.Item{}, fmt.Errorf("insert item: %w", err)
	}

	for _, v := range item.Variants {
		if _, err = tx.Exec(`INSERT INTO variants (item_id, quality, file_path) VALUES (?, ?, ?)`,
			item.ID, v.Quality, v.FilePath); err != nil {
			return models.Item{}, fmt.Errorf("insert variant: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return models.Item{}, err
	}
	return item, nil
}

// Get returns a single item with its quality variants.
func (s *Service) Get(id string) (*models.Item, error) {
	row := s.db.QueryRow(`
		SELECT id, title, series_id, season_number, episode_number, file_path, thumbnail_path, duration, views, added_at
		FROM items WHERE id = ?`, id)

	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	variants, err := s.variantsFor(id)
	if err != nil {
		return nil, err
	}
	item.Variants = variants
	return item, nil
}

// List returns every item, series ordering first, newest standalone last.
func (s *Service) List() ([]models.Item, error) {
	rows, err := s.db.Query(`
		SELECT id, title, series_id, season_number, episode_number, file_path, thumbnail_path, duration, views, added_at
		FROM items ORDER BY series_id, season_number, episode_number, added_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range items {
		variants, err := s.variantsFor(items[i].ID)
		if err != nil {
			return nil, err
		}
		items[i].Variants = variants
	}
	return items, nil
}

// Delete removes an item and its variants.
func (s *Service) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrItemNotFound
	}
	// Variants cascade when foreign keys are on; delete explicitly so the
	// registry stays consistent even without the pragma.
	_, err = s.db.Exec(`DELETE FROM variants WHERE item_id = ?`, id)
	return err
}

// IncrementViews bumps the item's view counter by one and returns the new
// count. The increment is a single UPDATE, so concurrent streams of the same
// item never lose counts.
func (s *Service) IncrementViews(id string) (int64, error) {
	res, err := s.db.Exec(`UPDATE items SET views = views + 1 WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if affected == 0 {
		return 0, ErrItemNotFound
	}

	var views int64
	if err := s.db.QueryRow(`SELECT views FROM items WHERE id = ?`, id).Scan(&views); err != nil {
		return 0, err
	}
	return views, nil
}

// ResolveSource returns the backing file for an item, honoring an optional
// quality label. An unknown label falls back to the primary file.
func (s *Service) ResolveSource(id, quality string) (string, error) {
	item, err := s.Get(id)
	if err != nil {
		return "", err
	}
	if quality != "" {
		for _, v := range item.Variants {
			if v.Quality == quality {
				return v.FilePath, nil
			}
		}
	}
	return item.FilePath, nil
}

func (s *Service) variantsFor(itemID string) ([]models.QualityVariant, error) {
	rows, err := s.db.Query(`SELECT quality, file_path FROM variants WHERE item_id = ? ORDER BY quality`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var variants []models.QualityVariant
	for rows.Next() {
		var v models.QualityVariant
		if err := rows.Scan(&v.Quality, &v.FilePath); err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
	return variants, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item      models.Item
		seriesID  sql.NullString
		thumbnail sql.NullString
		duration  sql.NullFloat64
		addedAt   int64
	)
	err := row.Scan(&item.ID, &item.Title, &seriesID, &item.SeasonNumber, &item.EpisodeNumber,
		&item.FilePath, &thumbnail, &duration, &item.Views, &addedAt)
	if err != nil {
		return nil, err
	}
	item.SeriesID = seriesID.String
	item.ThumbnailPath = thumbnail.String
	item.Duration = duration.Float64
	item.AddedAt = time.Unix(addedAt, 0).UTC()
	return &item, nil
}

func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
