package models

import "time"

// Strategy names the selector that produced a setlist.
type Strategy string

const (
	StrategyModel    Strategy = "model"
	StrategyFallback Strategy = "fallback"
)

// SkippedSong reports a candidate generation could not use.
type SkippedSong struct {
	Song   Song   `json:"song"`
	Reason string `json:"reason"`
}

// Setlist captures an ordered, duration-bounded run of songs for one event.
type Setlist struct {
	ID            string         `json:"id,omitempty" db:"id"`
	UserID        int64          `json:"userId,omitempty" db:"user_id"`
	Name          string         `json:"name" db:"name"`
	Songs         []SelectedSong `json:"songs" db:"songs"`
	Duration      string         `json:"duration" db:"duration"`
	EventType     string         `json:"eventType" db:"event_type"`
	Notes         string         `json:"notes,omitempty" db:"notes"`
	TotalDuration string         `json:"totalDuration" db:"total_duration"`
	SongCount     int            `json:"songCount" db:"song_count"`
	Strategy      Strategy       `json:"strategy,omitempty" db:"strategy"`
	CreatedAt     time.Time      `json:"createdAt,omitempty" db:"created_at"`

	// Skipped is only populated on freshly generated setlists.
	Skipped []SkippedSong `json:"skipped,omitempty" db:"-"`
}

// GenerationRequest is the input to a single setlist generation.
type GenerationRequest struct {
	Name          string
	DurationLabel string
	// TargetMinutes overrides the budget implied by DurationLabel when positive.
	TargetMinutes int
	EventType     string
	Notes         string
	Songs         []Song
}
