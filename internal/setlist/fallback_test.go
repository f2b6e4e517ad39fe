package setlist

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"bandsetlist/shared/go/models"
)

func candidate(id, duration string) Candidate {
	secs, err := ParseSeconds(duration)
	if err != nil {
		panic(err)
	}
	return Candidate{Song: models.Song{ID: id, Title: "Song " + id, Artist: "Band", Genre: "Rock", Duration: duration}, Seconds: secs}
}

func noShuffle(int, func(i, j int)) {}

func TestFallbackSelectSkipsSongsThatDoNotFit(t *testing.T) {
	f := NewFallbackSelector(noShuffle)
	got := f.Select([]Candidate{
		candidate("a", "5:00"),
		candidate("b", "4:00"),
		candidate("c", "1:00"),
	}, 6)

	if len(got) != 2 {
		t.Fatalf("expected 2 songs, got %d", len(got))
	}
	if got[0].ID != "a" || got[1].ID != "c" {
		t.Fatalf("expected [a c], got [%s %s]", got[0].ID, got[1].ID)
	}
	if got[0].Order != 1 || got[1].Order != 2 {
		t.Fatalf("expected orders 1,2 got %d,%d", got[0].Order, got[1].Order)
	}
}

func TestFallbackSelectEmptyResults(t *testing.T) {
	f := NewFallbackSelector(nil)

	if got := f.Select(nil, 45); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result for no candidates, got %#v", got)
	}

	got := f.Select([]Candidate{candidate("long", "20:00"), candidate("longer", "31:00")}, 15)
	if len(got) != 0 {
		t.Fatalf("expected nothing to fit, got %d songs", len(got))
	}
}

func TestFallbackSelectLongestParseableSongNeverFits(t *testing.T) {
	rng := rand.New(rand.NewPCG(5, 8))
	f := NewFallbackSelector(rng.Shuffle)
	in := []Candidate{
		candidate("huge", "35791394:07"),
		candidate("a", "10:00"),
		candidate("b", "10:00"),
		candidate("c", "10:00"),
	}

	for i := 0; i < 100; i++ {
		got := f.Select(in, 15)
		if len(got) != 1 || got[0].ID == "huge" {
			t.Fatalf("expected a single ten minute song, got %+v", got)
		}
	}
}

func TestFallbackSelectDoesNotMutateInput(t *testing.T) {
	in := []Candidate{candidate("a", "1:00"), candidate("b", "1:00"), candidate("c", "1:00")}
	rng := rand.New(rand.NewPCG(7, 11))
	NewFallbackSelector(rng.Shuffle).Select(in, 60)

	if in[0].Song.ID != "a" || in[1].Song.ID != "b" || in[2].Song.ID != "c" {
		t.Fatalf("input order changed: %s %s %s", in[0].Song.ID, in[1].Song.ID, in[2].Song.ID)
	}
}

func TestFallbackSelectStaysWithinBudget(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	f := NewFallbackSelector(rng.Shuffle)

	for trial := 0; trial < 500; trial++ {
		n := rng.IntN(15) + 1
		in := make([]Candidate, n)
		counts := make(map[string]int, n)
		for i := range in {
			id := fmt.Sprintf("s%d", i)
			in[i] = candidate(id, fmt.Sprintf("%d:%02d", rng.IntN(9), rng.IntN(60)))
			counts[id]++
		}
		target := rng.IntN(60)

		got := f.Select(in, target)

		total := 0
		for i, s := range got {
			if s.Order != i+1 {
				t.Fatalf("trial %d: order %d at position %d", trial, s.Order, i)
			}
			counts[s.ID]--
			if counts[s.ID] < 0 {
				t.Fatalf("trial %d: song %s selected more often than offered", trial, s.ID)
			}
			secs, _ := ParseSeconds(s.Duration)
			total += secs
		}
		if total > target*60 {
			t.Fatalf("trial %d: total %ds exceeds budget %ds", trial, total, target*60)
		}
	}
}

func TestFallbackSelectPositionsAreUniform(t *testing.T) {
	const (
		songs  = 4
		trials = 20000
	)
	in := make([]Candidate, songs)
	for i := range in {
		in[i] = candidate(fmt.Sprintf("s%d", i), "1:00")
	}

	rng := rand.New(rand.NewPCG(42, 99))
	f := NewFallbackSelector(rng.Shuffle)

	var positions [songs][songs]int
	for i := 0; i < trials; i++ {
		got := f.Select(in, 60)
		if len(got) != songs {
			t.Fatalf("expected all %d songs to fit, got %d", songs, len(got))
		}
		for pos, s := range got {
			var idx int
			fmt.Sscanf(s.ID, "s%d", &idx)
			positions[idx][pos]++
		}
	}

	expected := trials / songs
	tolerance := expected / 10
	for song := range positions {
		for pos, n := range positions[song] {
			if n < expected-tolerance || n > expected+tolerance {
				t.Errorf("song %d landed at position %d %d times, expected about %d", song, pos, n, expected)
			}
		}
	}
}
