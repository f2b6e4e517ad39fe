package setlist

// DefaultGenre is applied to songs added without a genre.
const DefaultGenre = "Other"

// Genres lists the genres a song may carry.
var Genres = []string{"Rock", "Pop", "Country", "Jazz", "Blues", "R&B", "Folk", "Electronic", "Hip-Hop", "Classical", "Other"}

// EventTypes lists the events a setlist can be generated for.
var EventTypes = []string{"Wedding", "Corporate Event", "Bar Gig", "Tailgate", "Private Party", "Concert", "Other"}

// DurationLabels lists the target lengths offered to users, shortest first.
var DurationLabels = []string{"15 minutes", "30 minutes", "45 minutes", "60 minutes", "90 minutes", "2 hours"}

var labelMinutes = map[string]int{
	"15 minutes": 15,
	"30 minutes": 30,
	"45 minutes": 45,
	"60 minutes": 60,
	"90 minutes": 90,
	"2 hours":    120,
}

// TargetMinutes maps a duration label to its budget. Unknown labels yield
// (0, false); callers that proceed anyway get an empty fallback result.
func TargetMinutes(label string) (int, bool) {
	m, ok := labelMinutes[label]
	return m, ok
}

// IsGenre reports whether g is one of Genres.
func IsGenre(g string) bool { return contains(Genres, g) }

// IsEventType reports whether e is one of EventTypes.
func IsEventType(e string) bool { return contains(EventTypes, e) }

func contains(values []string, candidate string) bool {
	for _, v := range values {
		if v == candidate {
			return true
		}
	}
	return false
}
