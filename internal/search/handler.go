// Package search answers free-text lookups over a band's own catalog.
package search

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"bandsetlist/internal/auth"
	"bandsetlist/shared/go/logging"
)

const maxLimit = 50

// Handler responds to search requests backed by the Store.
type Handler struct {
	store  Store
	logger zerolog.Logger
}

// NewHandler builds a handler using the provided store implementation.
// It expects auth.Middleware to have resolved the caller.
func NewHandler(store Store, logger zerolog.Logger) http.Handler {
	return &Handler{store: store, logger: logger.With().Str("component", "search").Logger()}
}

// Response models the payload returned by the search handler.
type Response struct {
	Sections []Section `json:"sections"`
}

// Section groups related search results.
type Section struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// Item represents a single search result entry.
type Item struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Href     string `json:"href,omitempty"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID, ok := auth.UserIDFrom(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, Response{Sections: []Section{}})
		return
	}

	limit := 10
	if rawLimit := strings.TrimSpace(r.URL.Query().Get("limit")); rawLimit != "" {
		if parsed, err := strconv.Atoi(rawLimit); err == nil && parsed > 0 {
			limit = min(parsed, maxLimit)
		}
	}

	results, err := h.store.Search(r.Context(), userID, query, limit)
	if err != nil {
		log := logging.FromContext(r.Context(), h.logger)
		log.Error().Err(err).Str("query", query).Msg("search failed")
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, buildResponse(results))
}

func buildResponse(results Results) Response {
	sections := []Section{}

	if len(results.Artists) > 0 {
		items := make([]Item, 0, len(results.Artists))
		for _, artist := range results.Artists {
			items = append(items, Item{
				ID:       artist.Name,
				Title:    artist.Name,
				Subtitle: pluralize(artist.SongCount, "song"),
				Href:     artist.Href,
			})
		}
		sections = append(sections, Section{Name: "artists", Items: items})
	}

	if len(results.Songs) > 0 {
		items := make([]Item, 0, len(results.Songs))
		for _, song := range results.Songs {
			items = append(items, Item{
				ID:       song.ID,
				Title:    song.Title,
				Subtitle: song.Artist + " • " + song.Genre + " • " + song.Duration,
			})
		}
		sections = append(sections, Section{Name: "songs", Items: items})
	}

	return Response{Sections: sections}
}

func writeJSON(w http.ResponseWriter, status int, payload Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func pluralize(count int, singular string) string {
	switch count {
	case 0:
		return ""
	case 1:
		return "1 " + singular
	default:
		return strconv.Itoa(count) + " " + singular + "s"
	}
}
