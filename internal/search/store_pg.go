package search

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	"bandsetlist/shared/go/models"
)

// Store defines the persistence operations required by the search handler.
type Store interface {
	Search(ctx context.Context, userID int64, query string, limit int) (Results, error)
}

// Results captures the different result buckets surfaced by the handler.
type Results struct {
	Artists []ArtistResult
	Songs   []models.Song
}

// ArtistResult summarises an artist match within one catalog.
type ArtistResult struct {
	Name      string
	SongCount int
	Href      string
}

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

// NewPGStore creates a Store backed by the supplied database handle.
func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

// Search matches the query against a user's artists and songs.
func (s *PGStore) Search(ctx context.Context, userID int64, query string, limit int) (Results, error) {
	if limit <= 0 {
		limit = 10
	}
	like := "%" + escapeLike(query) + "%"

	artists, err := s.fetchArtists(ctx, userID, like, limit)
	if err != nil {
		return Results{}, err
	}

	songs, err := s.fetchSongs(ctx, userID, like, limit)
	if err != nil {
		return Results{}, err
	}

	return Results{
		Artists: artists,
		Songs:   songs,
	}, nil
}

func (s *PGStore) fetchArtists(ctx context.Context, userID int64, like string, limit int) ([]ArtistResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT artist, COUNT(*) AS song_count
		FROM songs
		WHERE user_id = $1 AND artist ILIKE $2
		GROUP BY artist
		ORDER BY song_count DESC, artist ASC
		LIMIT $3
	`, userID, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search artists: %w", err)
	}
	defer rows.Close()

	results := make([]ArtistResult, 0)
	for rows.Next() {
		var (
			name  string
			count int
		)
		if err := rows.Scan(&name, &count); err != nil {
			return nil, fmt.Errorf("scan artist: %w", err)
		}

		results = append(results, ArtistResult{
			Name:      name,
			SongCount: count,
			Href:      "/api/v1/search?q=" + url.QueryEscape(name),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate artists: %w", err)
	}

	return results, nil
}

func (s *PGStore) fetchSongs(ctx context.Context, userID int64, like string, limit int) ([]models.Song, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, artist, genre, duration, created_at
		FROM songs
		WHERE user_id = $1 AND (title ILIKE $2 OR artist ILIKE $2 OR genre ILIKE $2)
		ORDER BY title ASC, id ASC
		LIMIT $3
	`, userID, like, limit)
	if err != nil {
		return nil, fmt.Errorf("search songs: %w", err)
	}
	defer rows.Close()

	results := make([]models.Song, 0)
	for rows.Next() {
		var song models.Song
		if err := rows.Scan(&song.ID, &song.UserID, &song.Title, &song.Artist, &song.Genre, &song.Duration, &song.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		results = append(results, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate songs: %w", err)
	}

	return results, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
