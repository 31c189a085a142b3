package library

import (
	"database/sql"
	"fmt"
)

const schemaItems = `
CREATE TABLE IF NOT EXISTS items (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	series_id TEXT,
	season_number INTEGER,
	episode_number INTEGER,
	file_path TEXT NOT NULL UNIQUE,
	thumbnail_path TEXT,
	duration REAL,
	views INTEGER NOT NULL DEFAULT 0,
	added_at INTEGER NOT NULL
);`

const schemaItemsIndexes = `
CREATE INDEX IF NOT EXISTS idx_items_series ON items(series_id, season_number, episode_number);
CREATE INDEX IF NOT EXISTS idx_items_title ON items(title);
`

const schemaVariants = `
CREATE TABLE IF NOT EXISTS variants (
	item_id TEXT NOT NULL,
	quality TEXT NOT NULL,
	file_path TEXT NOT NULL,
	PRIMARY KEY (item_id, quality),
	FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE
);`

func initSchema(db *sql.DB) error {
	statements := []string{
		`PRAGMA journal_mode=WAL;`,
		`PRAGMA foreign_keys=ON;`,
		schemaItems,
		schemaItemsIndexes,
		schemaVariants,
	}
	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}
