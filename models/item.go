package models

import "time"

// QualityVariant maps a quality label onto a pre-encoded file for an item.
// Variants are static; the player picks from this list but the server never
// renegotiates them mid-stream.
type QualityVariant struct {
	Quality  string `json:"quality"`
	FilePath string `json:"filePath"`
}

// Item represents a playable video or episode in the library.
type Item struct {
	ID            string           `json:"id"`
	Title         string           `json:"title"`
	SeriesID      string           `json:"seriesId,omitempty"`
	SeasonNumber  int              `json:"seasonNumber,omitempty"`
	EpisodeNumber int              `json:"episodeNumber,omitempty"`
	FilePath      string           `json:"filePath"`
	ThumbnailPath string           `json:"thumbnailPath,omitempty"`
	Duration      float64          `json:"duration,omitempty"` // seconds, supplied by the upstream probe
	Views         int64            `json:"views"`
	Variants      []QualityVariant `json:"variants,omitempty"`
	AddedAt       time.Time        `json:"addedAt"`
}

// NewItemPayload represents a request to register an item with the library.
type NewItemPayload struct {
	Title         string           `json:"title"`
	SeriesID      string           `json:"seriesId,omitempty"`
	SeasonNumber  int              `json:"seasonNumber,omitempty"`
	EpisodeNumber int              `json:"episodeNumber,omitempty"`
	FilePath      string           `json:"filePath"`
	ThumbnailPath string           `json:"thumbnailPath,omitempty"`
	Duration      float64          `json:"duration,omitempty"`
	Variants      []QualityVariant `json:"variants,omitempty"`
}
