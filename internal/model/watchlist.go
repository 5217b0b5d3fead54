package model

import "time"

// WatchEntry is one ticker tracked for scheduled revaluation.
type WatchEntry struct {
	Ticker  string    `json:"ticker"`
	AddedAt time.Time `json:"added_at"`
}

// WatchlistState is the persisted watchlist. It holds inputs only.
type WatchlistState struct {
	Entries   []WatchEntry `json:"entries"`
	UpdatedAt time.Time    `json:"updated_at"`
}
