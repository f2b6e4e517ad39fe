package setlists

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"bandsetlist/internal/setlist"
	"bandsetlist/internal/validation"
	"bandsetlist/shared/go/models"
)

// ErrInvalidSetlist wraps validation failures for generation and save requests.
var ErrInvalidSetlist = errors.New("invalid setlist")

// Store captures the persistence needs for setlist workflows.
type Store interface {
	ListSetlists(ctx context.Context, userID int64) ([]models.Setlist, error)
	GetSetlist(ctx context.Context, userID int64, id string) (models.Setlist, error)
	SaveSetlist(ctx context.Context, userID int64, setlist models.Setlist) (models.Setlist, error)
	DeleteSetlist(ctx context.Context, userID int64, id string) error
}

// SongLister supplies a user's catalog.
type SongLister interface {
	List(ctx context.Context, userID int64, genres []string) ([]models.Song, error)
}

// Generator builds an unsaved setlist from a request.
type Generator interface {
	Generate(ctx context.Context, req models.GenerationRequest) (models.Setlist, error)
}

// GenerateInput is the user-supplied part of a generation request.
type GenerateInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	Duration  string `json:"duration" validate:"required,durationlabel"`
	EventType string `json:"eventType" validate:"omitempty,eventtype"`
	Notes     string `json:"notes" validate:"max=1000"`
}

// Service coordinates setlist generation and persistence.
type Service interface {
	Generate(ctx context.Context, userID int64, in GenerateInput) (models.Setlist, error)
	Save(ctx context.Context, userID int64, s models.Setlist) (models.Setlist, error)
	List(ctx context.Context, userID int64) ([]models.Setlist, error)
	Get(ctx context.Context, userID int64, id string) (models.Setlist, error)
	Delete(ctx context.Context, userID int64, id string) error
	ShareText(ctx context.Context, userID int64, id string) (string, error)
}

type service struct {
	store     Store
	songs     SongLister
	generator Generator
	validate  *validator.Validate
}

// New constructs a Service.
func New(store Store, songs SongLister, generator Generator) Service {
	return &service{
		store:     store,
		songs:     songs,
		generator: generator,
		validate:  validation.New(),
	}
}

func (s *service) Generate(ctx context.Context, userID int64, in GenerateInput) (models.Setlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Setlist{}, err
	}

	in.Name = strings.TrimSpace(in.Name)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := validation.Struct(s.validate, in); err != nil {
		return models.Setlist{}, fmt.Errorf("%w: %v", ErrInvalidSetlist, err)
	}

	songs, err := s.songs.List(ctx, userID, nil)
	if err != nil {
		return models.Setlist{}, fmt.Errorf("load songs: %w", err)
	}

	generated, err := s.generator.Generate(ctx, models.GenerationRequest{
		Name:          in.Name,
		DurationLabel: in.Duration,
		EventType:     in.EventType,
		Notes:         in.Notes,
		Songs:         songs,
	})
	if err != nil {
		return models.Setlist{}, err
	}
	generated.UserID = userID
	return generated, nil
}

func (s *service) Save(ctx context.Context, userID int64, sl models.Setlist) (models.Setlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Setlist{}, err
	}

	sl.Name = strings.TrimSpace(sl.Name)
	sl.Notes = strings.TrimSpace(sl.Notes)
	if err := validation.Struct(s.validate, GenerateInput{
		Name:      sl.Name,
		Duration:  sl.Duration,
		EventType: sl.EventType,
		Notes:     sl.Notes,
	}); err != nil {
		return models.Setlist{}, fmt.Errorf("%w: %v", ErrInvalidSetlist, err)
	}

	for i, song := range sl.Songs {
		if song.Order != i+1 {
			return models.Setlist{}, fmt.Errorf("%w: song %d has order %d, orders must run 1..%d", ErrInvalidSetlist, i+1, song.Order, len(sl.Songs))
		}
	}

	if err := s.resolveSongs(ctx, userID, sl.Songs); err != nil {
		return models.Setlist{}, err
	}

	total, count, err := setlist.Summarize(sl.Songs)
	if err != nil {
		return models.Setlist{}, fmt.Errorf("%w: %v", ErrInvalidSetlist, err)
	}
	sl.TotalDuration = total
	sl.SongCount = count

	return s.store.SaveSetlist(ctx, userID, sl)
}

// resolveSongs replaces each selected song with the caller's catalog entry,
// keeping its order. Songs outside the catalog are rejected.
func (s *service) resolveSongs(ctx context.Context, userID int64, selected []models.SelectedSong) error {
	if len(selected) == 0 {
		return nil
	}

	catalog, err := s.songs.List(ctx, userID, nil)
	if err != nil {
		return fmt.Errorf("load songs: %w", err)
	}
	byID := make(map[string]models.Song, len(catalog))
	for _, song := range catalog {
		byID[song.ID] = song
	}

	for i := range selected {
		song, ok := byID[selected[i].ID]
		if !ok {
			return fmt.Errorf("%w: song %q is not in your catalog", ErrInvalidSetlist, selected[i].ID)
		}
		selected[i].Song = song
	}
	return nil
}

func (s *service) List(ctx context.Context, userID int64) ([]models.Setlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.store.ListSetlists(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID int64, id string) (models.Setlist, error) {
	if err := ctx.Err(); err != nil {
		return models.Setlist{}, err
	}
	return s.store.GetSetlist(ctx, userID, id)
}

func (s *service) Delete(ctx context.Context, userID int64, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.DeleteSetlist(ctx, userID, id)
}

func (s *service) ShareText(ctx context.Context, userID int64, id string) (string, error) {
	sl, err := s.Get(ctx, userID, id)
	if err != nil {
		return "", err
	}
	return setlist.ShareText(sl), nil
}
