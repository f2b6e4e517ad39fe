package songs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"bandsetlist/internal/setlist"
	"bandsetlist/internal/store"
	"bandsetlist/internal/validation"
	"bandsetlist/shared/go/models"
)

// ErrInvalidSong wraps validation failures for new songs.
var ErrInvalidSong = errors.New("invalid song")

// Store captures the persistence needs for song workflows.
type Store interface {
	ListSongs(ctx context.Context, userID int64, filter store.SongFilter) ([]models.Song, error)
	AddSong(ctx context.Context, userID int64, song models.Song) (models.Song, error)
	DeleteSong(ctx context.Context, userID int64, id string) error
}

// Cache holds per-user song lists. Implementations report misses instead of
// failing reads.
type Cache interface {
	Songs(ctx context.Context, userID int64) ([]models.Song, bool)
	SetSongs(ctx context.Context, userID int64, songs []models.Song) error
	InvalidateSongs(ctx context.Context, userID int64) error
}

// NewSong is the user-supplied part of a song.
type NewSong struct {
	Title    string `json:"title" validate:"required,max=200"`
	Artist   string `json:"artist" validate:"required,max=200"`
	Genre    string `json:"genre" validate:"genre"`
	Duration string `json:"duration" validate:"required,songduration"`
}

// Service exposes song-centric operations.
type Service interface {
	List(ctx context.Context, userID int64, genres []string) ([]models.Song, error)
	Add(ctx context.Context, userID int64, song NewSong) (models.Song, error)
	Delete(ctx context.Context, userID int64, id string) error
}

type service struct {
	store    Store
	cache    Cache
	validate *validator.Validate
	logger   zerolog.Logger
}

// New constructs a song Service. cache may be nil.
func New(store Store, cache Cache, logger zerolog.Logger) Service {
	return &service{
		store:    store,
		cache:    cache,
		validate: validation.New(),
		logger:   logger.With().Str("component", "songs").Logger(),
	}
}

func (s *service) List(ctx context.Context, userID int64, genres []string) ([]models.Song, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(genres) == 0 && s.cache != nil {
		if cached, ok := s.cache.Songs(ctx, userID); ok {
			return cached, nil
		}
	}

	songs, err := s.store.ListSongs(ctx, userID, store.SongFilter{Genres: genres})
	if err != nil {
		return nil, err
	}

	if len(genres) == 0 && s.cache != nil {
		if err := s.cache.SetSongs(ctx, userID, songs); err != nil {
			s.logger.Debug().Err(err).Int64("user_id", userID).Msg("cache song list")
		}
	}
	return songs, nil
}

func (s *service) Add(ctx context.Context, userID int64, in NewSong) (models.Song, error) {
	if err := ctx.Err(); err != nil {
		return models.Song{}, err
	}

	in.Title = strings.TrimSpace(in.Title)
	in.Artist = strings.TrimSpace(in.Artist)
	in.Genre = strings.TrimSpace(in.Genre)
	in.Duration = strings.TrimSpace(in.Duration)
	if in.Genre == "" {
		in.Genre = setlist.DefaultGenre
	}

	if err := validation.Struct(s.validate, in); err != nil {
		return models.Song{}, fmt.Errorf("%w: %v", ErrInvalidSong, err)
	}

	song, err := s.store.AddSong(ctx, userID, models.Song{
		Title:    in.Title,
		Artist:   in.Artist,
		Genre:    in.Genre,
		Duration: in.Duration,
	})
	if err != nil {
		return models.Song{}, err
	}

	s.invalidate(ctx, userID)
	return song, nil
}

func (s *service) Delete(ctx context.Context, userID int64, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.store.DeleteSong(ctx, userID, id); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *service) invalidate(ctx context.Context, userID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateSongs(ctx, userID); err != nil {
		s.logger.Warn().Err(err).Int64("user_id", userID).Msg("invalidate cached songs")
	}
}
