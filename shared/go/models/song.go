package models

import "time"

// Song is a catalog entry owned by a single user.
type Song struct {
	ID        string    `json:"id" db:"id"`
	UserID    int64     `json:"userId,omitempty" db:"user_id"`
	Title     string    `json:"title" db:"title"`
	Artist    string    `json:"artist" db:"artist"`
	Genre     string    `json:"genre" db:"genre"`
	Duration  string    `json:"duration" db:"duration"` // minutes:seconds
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// SelectedSong is a song placed at a 1-based position in a setlist.
type SelectedSong struct {
	Song
	Order int `json:"order"`
}
