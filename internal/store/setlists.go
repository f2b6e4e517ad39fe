package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bandsetlist/shared/go/models"
)

// ErrSetlistNotFound is returned when a setlist does not exist for the user.
var ErrSetlistNotFound = errors.New("setlist not found")

const setlistColumns = `id, user_id, name, songs, duration, event_type, notes, total_duration, song_count, strategy, created_at`

// ListSetlists returns the user's saved setlists, newest first.
func (s *Store) ListSetlists(ctx context.Context, userID int64) ([]models.Setlist, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+setlistColumns+`
		FROM setlists
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("query setlists: %w", err)
	}
	defer rows.Close()

	setlists := []models.Setlist{}
	for rows.Next() {
		setlist, err := scanSetlist(rows)
		if err != nil {
			return nil, err
		}
		setlists = append(setlists, setlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate setlists: %w", err)
	}

	return setlists, nil
}

// GetSetlist returns one of the user's setlists.
func (s *Store) GetSetlist(ctx context.Context, userID int64, id string) (models.Setlist, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+setlistColumns+`
		FROM setlists
		WHERE id = $1 AND user_id = $2
	`, id, userID)

	setlist, err := scanSetlist(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || isMalformedID(err) {
			return models.Setlist{}, ErrSetlistNotFound
		}
		return models.Setlist{}, err
	}
	return setlist, nil
}

// SaveSetlist persists a setlist for the user, assigning its ID and creation time.
func (s *Store) SaveSetlist(ctx context.Context, userID int64, setlist models.Setlist) (models.Setlist, error) {
	if setlist.Songs == nil {
		setlist.Songs = []models.SelectedSong{}
	}
	songsJSON, err := json.Marshal(setlist.Songs)
	if err != nil {
		return models.Setlist{}, fmt.Errorf("marshal songs: %w", err)
	}

	setlist.ID = uuid.NewString()
	setlist.UserID = userID
	setlist.Skipped = nil

	err = s.db.QueryRowContext(ctx, `
		INSERT INTO setlists (id, user_id, name, songs, duration, event_type, notes, total_duration, song_count, strategy)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`,
		setlist.ID,
		userID,
		setlist.Name,
		string(songsJSON),
		setlist.Duration,
		setlist.EventType,
		setlist.Notes,
		setlist.TotalDuration,
		setlist.SongCount,
		string(setlist.Strategy),
	).Scan(&setlist.CreatedAt)
	if err != nil {
		return models.Setlist{}, fmt.Errorf("insert setlist: %w", err)
	}

	return setlist, nil
}

// DeleteSetlist removes one of the user's setlists.
func (s *Store) DeleteSetlist(ctx context.Context, userID int64, id string) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM setlists
		WHERE id = $1 AND user_id = $2
	`, id, userID)
	if err != nil {
		if isMalformedID(err) {
			return ErrSetlistNotFound
		}
		return fmt.Errorf("delete setlist: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrSetlistNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSetlist(row rowScanner) (models.Setlist, error) {
	var (
		setlist   models.Setlist
		songsJSON []byte
		strategy  string
	)
	if err := row.Scan(
		&setlist.ID,
		&setlist.UserID,
		&setlist.Name,
		&songsJSON,
		&setlist.Duration,
		&setlist.EventType,
		&setlist.Notes,
		&setlist.TotalDuration,
		&setlist.SongCount,
		&strategy,
		&setlist.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Setlist{}, err
		}
		return models.Setlist{}, fmt.Errorf("scan setlist: %w", err)
	}
	setlist.Strategy = models.Strategy(strategy)

	if len(songsJSON) > 0 {
		if err := json.Unmarshal(songsJSON, &setlist.Songs); err != nil {
			return models.Setlist{}, fmt.Errorf("decode setlist songs: %w", err)
		}
	}
	if setlist.Songs == nil {
		setlist.Songs = []models.SelectedSong{}
	}

	return setlist, nil
}
