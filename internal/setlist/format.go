package setlist

import (
	"fmt"
	"math"
	"strings"

	"bandsetlist/shared/go/models"
)

// TotalSeconds sums the parsed durations of songs.
func TotalSeconds(songs []models.SelectedSong) (int, error) {
	total := 0
	for _, s := range songs {
		secs, err := ParseSeconds(s.Duration)
		if err != nil {
			return total, err
		}
		total += secs
	}
	return total, nil
}

// FormatTotal renders a running time: "H:MM" from an hour up, otherwise
// "<n> minutes". Partial minutes are dropped.
func FormatTotal(minutes float64) string {
	if minutes >= 60 {
		hours := int(minutes / 60)
		mins := int(math.Mod(minutes, 60))
		return fmt.Sprintf("%d:%02d", hours, mins)
	}
	return fmt.Sprintf("%d minutes", int(math.Floor(minutes)))
}

// Summarize recomputes the derived total and count for songs.
func Summarize(songs []models.SelectedSong) (total string, count int, err error) {
	secs, err := TotalSeconds(songs)
	if err != nil {
		return "", 0, err
	}
	return FormatTotal(float64(secs) / 60), len(songs), nil
}

// ShareText renders a setlist as plain text for messaging apps.
func ShareText(s models.Setlist) string {
	var b strings.Builder
	b.WriteString(s.Name)
	b.WriteString("\n\n")
	for i, song := range s.Songs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%d. %s - %s (%s)", i+1, song.Title, song.Artist, song.Duration)
	}

	total := s.TotalDuration
	if total == "" {
		total, _, _ = Summarize(s.Songs)
	}
	fmt.Fprintf(&b, "\n\nTotal Duration: %s", total)
	return b.String()
}
