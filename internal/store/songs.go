package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"bandsetlist/shared/go/models"
)

// ErrSongNotFound is returned when a song does not exist.
var ErrSongNotFound = errors.New("song not found")

// SongFilter defines criteria for filtering a user's songs.
type SongFilter struct {
	Genres []string
}

// ListSongs returns the user's songs matching the filter, oldest first.
func (s *Store) ListSongs(ctx context.Context, userID int64, filter SongFilter) ([]models.Song, error) {
	query := `
		SELECT id, user_id, title, artist, genre, duration, created_at
		FROM songs
		WHERE user_id = $1`
	args := []interface{}{userID}

	if len(filter.Genres) > 0 {
		query += " AND genre = ANY($2)"
		args = append(args, pq.Array(filter.Genres))
	}

	query += " ORDER BY created_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query songs: %w", err)
	}
	defer rows.Close()

	songs := []models.Song{}
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.UserID, &song.Title, &song.Artist, &song.Genre, &song.Duration, &song.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	return songs, nil
}

// AddSong stores a song for the user, assigning its ID and creation time.
func (s *Store) AddSong(ctx context.Context, userID int64, song models.Song) (models.Song, error) {
	song.ID = uuid.NewString()
	song.UserID = userID
	song.Title = strings.TrimSpace(song.Title)
	song.Artist = strings.TrimSpace(song.Artist)

	err := s.db.QueryRowContext(ctx, `
		INSERT INTO songs (id, user_id, title, artist, genre, duration)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, song.ID, userID, song.Title, song.Artist, song.Genre, song.Duration).Scan(&song.CreatedAt)
	if err != nil {
		return models.Song{}, fmt.Errorf("insert song: %w", err)
	}

	return song, nil
}

// DeleteSong removes one of the user's songs.
func (s *Store) DeleteSong(ctx context.Context, userID int64, id string) error {
	var owner int64
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id
		FROM songs
		WHERE id = $1
	`, id).Scan(&owner)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return ErrSongNotFound
		}
		return fmt.Errorf("lookup song: %w", err)
	}
	if owner != userID {
		return ErrForbidden
	}

	res, err := s.db.ExecContext(ctx, `
		DELETE FROM songs
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		return fmt.Errorf("delete song: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrSongNotFound
	}

	return nil
}
