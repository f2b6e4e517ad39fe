package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"bandsetlist/shared/go/models"
)

var setlistRowColumns = []string{
	"id", "user_id", "name", "songs", "duration", "event_type", "notes", "total_duration", "song_count", "strategy", "created_at",
}

func TestSaveSetlist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	songs := []models.SelectedSong{{Song: models.Song{ID: "s1", Title: "Imagine", Artist: "John Lennon", Genre: "Pop", Duration: "3:03"}, Order: 1}}

	mock.ExpectQuery(regexp.QuoteMeta(`
		INSERT INTO setlists (id, user_id, name, songs, duration, event_type, notes, total_duration, song_count, strategy)
		VALUES ($1, $2, $3, $4::jsonb, $5, $6, $7, $8, $9, $10)
		RETURNING created_at
	`)).
		WithArgs(sqlmock.AnyArg(), int64(42), "Friday", sqlmock.AnyArg(), "15 minutes", "Bar Gig", "", "3 minutes", 1, "fallback").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(created))

	got, err := New(db).SaveSetlist(context.Background(), 42, models.Setlist{
		Name:          "Friday",
		Songs:         songs,
		Duration:      "15 minutes",
		EventType:     "Bar Gig",
		TotalDuration: "3 minutes",
		SongCount:     1,
		Strategy:      models.StrategyFallback,
		Skipped:       []models.SkippedSong{{Reason: "bad"}},
	})
	if err != nil {
		t.Fatalf("SaveSetlist: %v", err)
	}
	if got.ID == "" || got.UserID != 42 || !got.CreatedAt.Equal(created) {
		t.Fatalf("unexpected setlist: %#v", got)
	}
	if got.Skipped != nil {
		t.Fatal("skipped songs must not be persisted")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetSetlist(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2`)).
		WithArgs("sl1", int64(42)).
		WillReturnRows(sqlmock.NewRows(setlistRowColumns).AddRow(
			"sl1", int64(42), "Friday",
			[]byte(`[{"id":"s1","title":"Imagine","artist":"John Lennon","genre":"Pop","duration":"3:03","createdAt":"2024-05-01T00:00:00Z","order":1}]`),
			"15 minutes", "Bar Gig", "", "3 minutes", 1, "model", created,
		))

	got, err := New(db).GetSetlist(context.Background(), 42, "sl1")
	if err != nil {
		t.Fatalf("GetSetlist: %v", err)
	}
	if len(got.Songs) != 1 || got.Songs[0].Title != "Imagine" || got.Songs[0].Order != 1 {
		t.Fatalf("unexpected songs: %#v", got.Songs)
	}
	if got.Strategy != models.StrategyModel {
		t.Fatalf("expected model strategy, got %q", got.Strategy)
	}
}

func TestGetSetlistNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2`)).
		WithArgs("missing", int64(42)).
		WillReturnError(sql.ErrNoRows)

	if _, err := New(db).GetSetlist(context.Background(), 42, "missing"); !errors.Is(err, ErrSetlistNotFound) {
		t.Fatalf("expected ErrSetlistNotFound, got %v", err)
	}
}

func TestListSetlists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	created := time.Date(2024, 6, 1, 20, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at DESC`)).
		WithArgs(int64(42)).
		WillReturnRows(sqlmock.NewRows(setlistRowColumns).
			AddRow("sl2", int64(42), "Saturday", []byte(`[]`), "30 minutes", "Wedding", "", "0 minutes", 0, "fallback", created).
			AddRow("sl1", int64(42), "Friday", []byte(`[]`), "15 minutes", "Bar Gig", "", "0 minutes", 0, "fallback", created))

	got, err := New(db).ListSetlists(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListSetlists: %v", err)
	}
	if len(got) != 2 || got[0].ID != "sl2" || got[1].Songs == nil {
		t.Fatalf("unexpected setlists: %#v", got)
	}
}

func TestDeleteSetlist(t *testing.T) {
	query := regexp.QuoteMeta(`
		DELETE FROM setlists
		WHERE id = $1 AND user_id = $2
	`)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec(query).WithArgs("sl1", int64(42)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).WithArgs("sl1", int64(42)).WillReturnResult(sqlmock.NewResult(0, 0))

	s := New(db)
	if err := s.DeleteSetlist(context.Background(), 42, "sl1"); err != nil {
		t.Fatalf("DeleteSetlist: %v", err)
	}
	if err := s.DeleteSetlist(context.Background(), 42, "sl1"); !errors.Is(err, ErrSetlistNotFound) {
		t.Fatalf("expected ErrSetlistNotFound on second delete, got %v", err)
	}
}

func TestMalformedSetlistIDIsNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	invalid := &pgconn.PgError{Code: "22P02", Message: "invalid input syntax for type uuid"}
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE id = $1 AND user_id = $2`)).
		WithArgs("not-a-uuid", int64(42)).
		WillReturnError(invalid)
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM setlists`)).
		WithArgs("not-a-uuid", int64(42)).
		WillReturnError(invalid)

	s := New(db)
	if _, err := s.GetSetlist(context.Background(), 42, "not-a-uuid"); !errors.Is(err, ErrSetlistNotFound) {
		t.Fatalf("get: expected ErrSetlistNotFound, got %v", err)
	}
	if err := s.DeleteSetlist(context.Background(), 42, "not-a-uuid"); !errors.Is(err, ErrSetlistNotFound) {
		t.Fatalf("delete: expected ErrSetlistNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
