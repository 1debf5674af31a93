package model

import "time"

// Demo represents one audio demo on an artist's portfolio. Segments holds
// the raw stored clip markers as a JSON array of {label, startTime} pairs;
// it is normalized into playable clips at read time, never trusted as-is
// (legacy rows may be null, unsorted, or double-encoded).
type Demo struct {
	ID           int64     `json:"id"`
	ArtistID     int64     `json:"artistId"`
	Title        string    `json:"title"`
	AudioPath    string    `json:"-"`         // Object key in storage, not exposed directly
	AudioURL     string    `json:"audioUrl"`  // Playable source after URL normalization
	WaveformPath string    `json:"-"`         // Object key of the cached peaks JSON
	Duration     float64   `json:"duration"`  // Duration in seconds, 0 while unknown
	Segments     string    `json:"-"`         // Stored segment JSON, served via /clips
	Position     int       `json:"position"`  // Display order on the public site
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}
