package models

import "time"

// ProgressUpdate represents a playback progress report from a player.
type ProgressUpdate struct {
	ItemID   string  `json:"itemId"`
	Position float64 `json:"position"` // current playback position in seconds
	Duration float64 `json:"duration"` // total duration in seconds
}

// PlaybackProgress stores the last known playback position for an item.
type PlaybackProgress struct {
	ItemID         string    `json:"itemId"`
	Position       float64   `json:"position"`
	Duration       float64   `json:"duration"`
	PercentWatched float64   `json:"percentWatched"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
