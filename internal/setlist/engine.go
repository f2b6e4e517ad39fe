// Package setlist turns a user's song catalog into a duration-bounded,
// ordered setlist. A language-model completion is tried first when one is
// configured; any failure there falls back, once, to a shuffled greedy
// packing of the same candidates.
package setlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"bandsetlist/shared/go/models"
)

// ErrNoCandidates signals a generation request with nothing to choose from.
var ErrNoCandidates = errors.New("no songs available")

// DefaultModelTimeout bounds a single completion call.
const DefaultModelTimeout = 20 * time.Second

// Recorder observes generation results. Implementations must be safe for
// concurrent use.
type Recorder interface {
	GenerationCompleted(strategy models.Strategy, songs int)
	ModelFailed(reason FailureReason)
}

type nopRecorder struct{}

func (nopRecorder) GenerationCompleted(models.Strategy, int) {}
func (nopRecorder) ModelFailed(FailureReason)                {}

// Options configures an Engine. A nil Completer disables the model path.
type Options struct {
	Completer    Completer
	MaxTokens    int
	Temperature  *float32 // nil selects DefaultTemperature
	ModelTimeout time.Duration
	Shuffle      ShuffleFunc
	Recorder     Recorder
	Logger       zerolog.Logger
}

// Engine generates setlists. It holds no per-request state and may be shared.
type Engine struct {
	model    *ModelSelector
	fallback *FallbackSelector
	timeout  time.Duration
	recorder Recorder
	logger   zerolog.Logger
}

// New builds an Engine from opts.
func New(opts Options) *Engine {
	e := &Engine{
		fallback: NewFallbackSelector(opts.Shuffle),
		timeout:  opts.ModelTimeout,
		recorder: opts.Recorder,
		logger:   opts.Logger.With().Str("component", "setlist_engine").Logger(),
	}
	if opts.Completer != nil {
		e.model = NewModelSelector(opts.Completer, opts.MaxTokens, opts.Temperature)
	}
	if e.timeout <= 0 {
		e.timeout = DefaultModelTimeout
	}
	if e.recorder == nil {
		e.recorder = nopRecorder{}
	}
	return e
}

// ModelEnabled reports whether the model-assisted path is configured.
func (e *Engine) ModelEnabled() bool { return e.model != nil }

// Generate builds an unsaved setlist from req. It fails only with
// ErrNoCandidates or with the caller's cancellation.
func (e *Engine) Generate(ctx context.Context, req models.GenerationRequest) (models.Setlist, error) {
	if len(req.Songs) == 0 {
		return models.Setlist{}, ErrNoCandidates
	}

	candidates, skipped := Candidates(req.Songs)
	for _, s := range skipped {
		e.logger.Warn().Str("song_id", s.Song.ID).Str("reason", s.Reason).Msg("skipping song with unusable duration")
	}
	if len(candidates) == 0 {
		return models.Setlist{}, fmt.Errorf("%w: no song has a usable duration", ErrNoCandidates)
	}

	target := req.TargetMinutes
	if target <= 0 {
		var ok bool
		if target, ok = TargetMinutes(req.DurationLabel); !ok {
			e.logger.Warn().Str("duration", req.DurationLabel).Msg("unknown duration label, using a zero budget")
		}
	}

	songs, strategy, err := e.selectSongs(ctx, candidates, target, req.EventType, req.Notes)
	if err != nil {
		return models.Setlist{}, err
	}

	seconds, _ := TotalSeconds(songs)
	e.recorder.GenerationCompleted(strategy, len(songs))

	return models.Setlist{
		Name:          req.Name,
		Songs:         songs,
		Duration:      req.DurationLabel,
		EventType:     req.EventType,
		Notes:         req.Notes,
		TotalDuration: FormatTotal(float64(seconds) / 60),
		SongCount:     len(songs),
		Strategy:      strategy,
		Skipped:       skipped,
	}, nil
}

func (e *Engine) selectSongs(ctx context.Context, candidates []Candidate, target int, eventType, notes string) ([]models.SelectedSong, models.Strategy, error) {
	if e.model != nil {
		mctx, cancel := context.WithTimeout(ctx, e.timeout)
		outcome := e.model.Select(mctx, candidates, target, eventType, notes)
		cancel()

		if outcome.OK() {
			return outcome.Songs, models.StrategyModel, nil
		}

		e.recorder.ModelFailed(outcome.Reason)
		e.logger.Warn().
			Err(outcome.Err).
			Str("reason", string(outcome.Reason)).
			Int("candidates", len(candidates)).
			Msg("model-assisted selection failed, using fallback")

		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, "", ctx.Err()
		}
	}

	return e.fallback.Select(candidates, target), models.StrategyFallback, nil
}

// Candidates parses every song's duration, splitting usable candidates from
// songs that must be skipped.
func Candidates(songs []models.Song) ([]Candidate, []models.SkippedSong) {
	candidates := make([]Candidate, 0, len(songs))
	var skipped []models.SkippedSong
	for _, song := range songs {
		secs, err := ParseSeconds(song.Duration)
		if err != nil {
			skipped = append(skipped, models.SkippedSong{Song: song, Reason: err.Error()})
			continue
		}
		candidates = append(candidates, Candidate{Song: song, Seconds: secs})
	}
	return candidates, skipped
}
