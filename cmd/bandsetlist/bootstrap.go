package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"bandsetlist/internal/store"
	"bandsetlist/shared/go/config"
)

const (
	demoUsername = "demo"
	demoPassword = "demo123"
)

type seedSong struct {
	Title    string
	Artist   string
	Genre    string
	Duration string
}

var demoSongs = []seedSong{
	{Title: "Bohemian Rhapsody", Artist: "Queen", Genre: "Rock", Duration: "5:55"},
	{Title: "Hotel California", Artist: "Eagles", Genre: "Rock", Duration: "6:30"},
	{Title: "Imagine", Artist: "John Lennon", Genre: "Pop", Duration: "3:03"},
	{Title: "Stairway to Heaven", Artist: "Led Zeppelin", Genre: "Rock", Duration: "8:02"},
	{Title: "Sweet Caroline", Artist: "Neil Diamond", Genre: "Pop", Duration: "3:21"},
	{Title: "Don't Stop Believin'", Artist: "Journey", Genre: "Rock", Duration: "4:10"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the demo account and its starter catalog",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging)

	db, err := openDatabase(cmd.Context(), cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	return bootstrapDemoData(cmd.Context(), db, store.New(db))
}

// userCreator is the slice of the store the bootstrap needs.
type userCreator interface {
	CreateUser(ctx context.Context, username, password string) (int64, error)
}

func bootstrapDemoData(ctx context.Context, db *sql.DB, users userCreator) error {
	if err := ensureDemoUser(ctx, users); err != nil {
		return err
	}
	return ensureDemoSongs(ctx, db)
}

func ensureDemoUser(ctx context.Context, users userCreator) error {
	if _, err := users.CreateUser(ctx, demoUsername, demoPassword); err != nil && !errors.Is(err, store.ErrUserExists) {
		return fmt.Errorf("bootstrap demo user: %w", err)
	}
	return nil
}

func ensureDemoSongs(ctx context.Context, db *sql.DB) error {
	var userID int64
	if err := db.QueryRowContext(ctx, `
		SELECT id
		FROM users
		WHERE username = $1
	`, demoUsername).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("lookup demo user: %w", err)
	}

	var count int
	if err := db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM songs
		WHERE user_id = $1
	`, userID).Scan(&count); err != nil {
		return fmt.Errorf("count demo songs: %w", err)
	}
	if count > 0 {
		logger.Info().Int("songs", count).Msg("demo catalog already present")
		return nil
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	for _, song := range demoSongs {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO songs (id, user_id, title, artist, genre, duration)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, uuid.NewString(), userID, song.Title, song.Artist, song.Genre, song.Duration); err != nil {
			return fmt.Errorf("insert demo song %q: %w", song.Title, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed tx: %w", err)
	}
	tx = nil

	logger.Info().Int("songs", len(demoSongs)).Str("username", demoUsername).Msg("demo catalog created")
	return nil
}
