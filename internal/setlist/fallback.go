package setlist

import (
	"math/rand/v2"

	"bandsetlist/shared/go/models"
)

// Candidate is a song whose duration has already been parsed.
type Candidate struct {
	Song    models.Song
	Seconds int
}

// ShuffleFunc permutes n elements through swap. rand.Shuffle and
// (*rand.Rand).Shuffle both satisfy it.
type ShuffleFunc func(n int, swap func(i, j int))

// FallbackSelector packs a uniformly shuffled candidate list into a budget.
type FallbackSelector struct {
	shuffle ShuffleFunc
}

// NewFallbackSelector returns a selector using shuffle, or the process-wide
// math/rand/v2 source when shuffle is nil.
func NewFallbackSelector(shuffle ShuffleFunc) *FallbackSelector {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &FallbackSelector{shuffle: shuffle}
}

// Select walks a Fisher-Yates permutation of candidates and keeps every song
// that still fits in targetMinutes. A song that does not fit is skipped and
// later, shorter songs may still be taken. The result may be empty.
func (f *FallbackSelector) Select(candidates []Candidate, targetMinutes int) []models.SelectedSong {
	if len(candidates) == 0 {
		return []models.SelectedSong{}
	}

	order := make([]Candidate, len(candidates))
	copy(order, candidates)
	f.shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	budget := targetMinutes * 60
	total := 0
	selected := make([]models.SelectedSong, 0, len(order))
	for _, c := range order {
		if total+c.Seconds > budget {
			continue
		}
		total += c.Seconds
		selected = append(selected, models.SelectedSong{Song: c.Song, Order: len(selected) + 1})
	}
	return selected
}
