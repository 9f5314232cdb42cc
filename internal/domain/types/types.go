// Package types contains common types used across the application
package types

import "time"

// Entry represents one row of the popularity ranking as served to clients.
type Entry struct {
	Rank       int     `json:"rank"`
	ItemID     string  `json:"item_id"`
	Title      string  `json:"title"`
	Author     string  `json:"author"`
	NumRatings int     `json:"num_ratings"`
	AvgRating  float64 `json:"avg_rating"`
	Score      float64 `json:"score"`
}

// Stats summarizes the currently served ranking.
type Stats struct {
	Ready            bool      `json:"ready"`
	SnapshotID       string    `json:"snapshot_id,omitempty"`
	BuiltAt          time.Time `json:"built_at,omitzero"`
	Items            int       `json:"items"`
	GlobalMean       float64   `json:"global_mean"`
	MMin             float64   `json:"m_min"`
	TieBreak         string    `json:"tie_break"`
	RatingsRetained  int       `json:"ratings_retained"`
	RatingsDiscarded int       `json:"ratings_discarded"`
	KnownUsers       int       `json:"known_users"`
}
