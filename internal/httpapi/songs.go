package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"bandsetlist/internal/app/songs"
	"bandsetlist/internal/auth"
)

func (s *Server) handleListSongs(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	var genres []string
	for _, g := range strings.Split(r.URL.Query().Get("genre"), ",") {
		if g = strings.TrimSpace(g); g != "" {
			genres = append(genres, g)
		}
	}

	list, err := s.songs.List(r.Context(), userID, genres)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleAddSong(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	var req songs.NewSong
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	song, err := s.songs.Add(r.Context(), userID, req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, song)
}

func (s *Server) handleDeleteSong(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFrom(r.Context())

	if err := s.songs.Delete(r.Context(), userID, r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
