package setlist

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"bandsetlist/shared/go/models"
)

type countingRecorder struct {
	mu         sync.Mutex
	strategies []models.Strategy
	failures   []FailureReason
}

func (r *countingRecorder) GenerationCompleted(strategy models.Strategy, songs int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies = append(r.strategies, strategy)
}

func (r *countingRecorder) ModelFailed(reason FailureReason) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = append(r.failures, reason)
}

func song(id, duration string) models.Song {
	return models.Song{ID: id, Title: "Song " + id, Artist: "Band", Genre: "Rock", Duration: duration}
}

func TestGenerateWithoutCandidates(t *testing.T) {
	stub := &stubCompleter{reply: "[1]"}
	engine := New(Options{Completer: stub, Logger: zerolog.Nop()})

	for _, label := range append([]string{"", "bogus"}, DurationLabels...) {
		_, err := engine.Generate(context.Background(), models.GenerationRequest{Name: "x", DurationLabel: label})
		if !errors.Is(err, ErrNoCandidates) {
			t.Fatalf("label %q: expected ErrNoCandidates, got %v", label, err)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("completion service should not be called, got %d calls", stub.calls)
	}
}

func TestGenerateFallbackWhenModelUnconfigured(t *testing.T) {
	rec := &countingRecorder{}
	engine := New(Options{
		Shuffle:  rand.New(rand.NewPCG(3, 5)).Shuffle,
		Recorder: rec,
		Logger:   zerolog.Nop(),
	})
	if engine.ModelEnabled() {
		t.Fatal("expected model path to be disabled")
	}

	songs := []models.Song{song("A", "3:00"), song("B", "4:00"), song("C", "2:00")}
	durations := map[string]int{"A": 180, "B": 240, "C": 120}

	for i := 0; i < 50; i++ {
		got, err := engine.Generate(context.Background(), models.GenerationRequest{
			Name:          "Short set",
			TargetMinutes: 6,
			Songs:         songs,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Strategy != models.StrategyFallback {
			t.Fatalf("expected fallback strategy, got %q", got.Strategy)
		}
		if len(got.Songs) == 0 {
			t.Fatal("at least one song always fits in six minutes")
		}

		seen := map[string]bool{}
		total := 0
		for _, s := range got.Songs {
			if seen[s.ID] {
				t.Fatalf("song %s selected twice", s.ID)
			}
			seen[s.ID] = true
			total += durations[s.ID]
		}
		if total > 360 {
			t.Fatalf("total %ds exceeds six minutes", total)
		}
		if got.SongCount != len(got.Songs) {
			t.Fatalf("song count %d does not match %d songs", got.SongCount, len(got.Songs))
		}
	}

	if len(rec.failures) != 0 {
		t.Fatalf("expected no model failures, got %v", rec.failures)
	}
}

func TestGenerateUsesModelWhenItSucceeds(t *testing.T) {
	rec := &countingRecorder{}
	stub := &stubCompleter{reply: "[2, 1]"}
	engine := New(Options{Completer: stub, Recorder: rec, Logger: zerolog.Nop()})

	got, err := engine.Generate(context.Background(), models.GenerationRequest{
		Name:          "Reception",
		DurationLabel: "45 minutes",
		EventType:     "Wedding",
		Notes:         "first dance early",
		Songs:         []models.Song{song("A", "3:00"), song("B", "4:30")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Strategy != models.StrategyModel {
		t.Fatalf("expected model strategy, got %q", got.Strategy)
	}
	if got.Songs[0].ID != "B" || got.Songs[1].ID != "A" {
		t.Fatalf("unexpected order: %+v", got.Songs)
	}
	if got.TotalDuration != "7 minutes" || got.SongCount != 2 {
		t.Fatalf("unexpected totals: %q / %d", got.TotalDuration, got.SongCount)
	}
	if got.Name != "Reception" || got.Duration != "45 minutes" || got.EventType != "Wedding" || got.Notes != "first dance early" {
		t.Fatalf("request fields not carried over: %+v", got)
	}
	if !strings.Contains(stub.lastPrompt, "approximately 45 minutes") {
		t.Fatalf("prompt did not carry target minutes")
	}
	if len(rec.strategies) != 1 || rec.strategies[0] != models.StrategyModel {
		t.Fatalf("unexpected recorded strategies: %v", rec.strategies)
	}
}

func TestGenerateFallsBackOnModelFailure(t *testing.T) {
	tests := []struct {
		name       string
		stub       *stubCompleter
		wantReason FailureReason
	}{
		{"malformed", &stubCompleter{reply: "Sure! Here is your setlist."}, ReasonMalformed},
		{"out of range", &stubCompleter{reply: "[9]"}, ReasonOutOfRange},
		{"service down", &stubCompleter{err: errors.New("connection refused")}, ReasonServiceError},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			rec := &countingRecorder{}
			engine := New(Options{Completer: tc.stub, Shuffle: noShuffle, Recorder: rec, Logger: zerolog.Nop()})

			got, err := engine.Generate(context.Background(), models.GenerationRequest{
				Name:          "Gig",
				DurationLabel: "15 minutes",
				Songs:         []models.Song{song("A", "10:00"), song("B", "6:00"), song("C", "5:00")},
			})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Strategy != models.StrategyFallback {
				t.Fatalf("expected fallback, got %q", got.Strategy)
			}
			if len(got.Songs) != 2 || got.Songs[0].ID != "A" || got.Songs[1].ID != "C" {
				t.Fatalf("unexpected fallback selection: %+v", got.Songs)
			}
			if tc.stub.calls != 1 {
				t.Fatalf("model should be tried exactly once, got %d", tc.stub.calls)
			}
			if len(rec.failures) != 1 || rec.failures[0] != tc.wantReason {
				t.Fatalf("expected failure %q recorded, got %v", tc.wantReason, rec.failures)
			}
		})
	}
}

type blockingCompleter struct{}

func (blockingCompleter) Complete(ctx context.Context, _ string, _ int, _ float32) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateFallsBackOnModelTimeout(t *testing.T) {
	rec := &countingRecorder{}
	engine := New(Options{Completer: blockingCompleter{}, ModelTimeout: 1, Recorder: rec, Logger: zerolog.Nop()})

	got, err := engine.Generate(context.Background(), models.GenerationRequest{
		DurationLabel: "15 minutes",
		Songs:         []models.Song{song("A", "3:00")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Strategy != models.StrategyFallback || len(got.Songs) != 1 {
		t.Fatalf("expected fallback with one song, got %q %+v", got.Strategy, got.Songs)
	}
	if len(rec.failures) != 1 || rec.failures[0] != ReasonTimeout {
		t.Fatalf("expected timeout failure, got %v", rec.failures)
	}
}

func TestGenerateStopsWhenCallerCancels(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := New(Options{Completer: blockingCompleter{}, Logger: zerolog.Nop()})
	_, err := engine.Generate(ctx, models.GenerationRequest{
		DurationLabel: "15 minutes",
		Songs:         []models.Song{song("A", "3:00")},
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestGenerateSkipsUnparseableSongs(t *testing.T) {
	engine := New(Options{Shuffle: noShuffle, Logger: zerolog.Nop()})

	got, err := engine.Generate(context.Background(), models.GenerationRequest{
		DurationLabel: "15 minutes",
		Songs:         []models.Song{song("good", "3:00"), song("bad", "three minutes")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Songs) != 1 || got.Songs[0].ID != "good" {
		t.Fatalf("unexpected songs: %+v", got.Songs)
	}
	if len(got.Skipped) != 1 || got.Skipped[0].Song.ID != "bad" {
		t.Fatalf("expected bad song to be reported as skipped, got %+v", got.Skipped)
	}

	_, err = engine.Generate(context.Background(), models.GenerationRequest{
		DurationLabel: "15 minutes",
		Songs:         []models.Song{song("bad", "?")},
	})
	if !errors.Is(err, ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates when nothing is usable, got %v", err)
	}
}

func TestGenerateSkipsOverflowingDurations(t *testing.T) {
	engine := New(Options{Shuffle: rand.New(rand.NewPCG(9, 4)).Shuffle, Logger: zerolog.Nop()})

	for i := 0; i < 50; i++ {
		got, err := engine.Generate(context.Background(), models.GenerationRequest{
			DurationLabel: "15 minutes",
			Songs: []models.Song{
				song("H", "153722867280912931:00"),
				song("A", "10:00"),
				song("B", "10:00"),
				song("C", "10:00"),
			},
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got.Songs) != 1 || got.Songs[0].ID == "H" {
			t.Fatalf("expected one ten minute song, got %+v", got.Songs)
		}
		if got.TotalDuration != "10 minutes" {
			t.Fatalf("expected 10 minutes total, got %q", got.TotalDuration)
		}
		if len(got.Skipped) != 1 || got.Skipped[0].Song.ID != "H" {
			t.Fatalf("expected H to be skipped, got %+v", got.Skipped)
		}
	}
}

func TestGenerateUnknownLabelFitsNothing(t *testing.T) {
	engine := New(Options{Logger: zerolog.Nop()})
	got, err := engine.Generate(context.Background(), models.GenerationRequest{
		DurationLabel: "all night",
		Songs:         []models.Song{song("A", "3:00")},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Songs) != 0 || got.TotalDuration != "0 minutes" {
		t.Fatalf("expected empty setlist, got %+v", got)
	}
}
