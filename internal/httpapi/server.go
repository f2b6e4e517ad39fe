package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"bandsetlist/internal/app/setlists"
	"bandsetlist/internal/app/songs"
	"bandsetlist/internal/auth"
	"bandsetlist/internal/setlist"
	"bandsetlist/internal/store"
	"bandsetlist/shared/go/logging"
	"bandsetlist/shared/go/models"
)

// UserService captures the account operations needed by the HTTP handlers.
type UserService interface {
	Signup(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (string, error)
}

// SongService coordinates catalog operations.
type SongService interface {
	List(ctx context.Context, userID int64, genres []string) ([]models.Song, error)
	Add(ctx context.Context, userID int64, song songs.NewSong) (models.Song, error)
	Delete(ctx context.Context, userID int64, id string) error
}

// SetlistService coordinates setlist generation and persistence.
type SetlistService interface {
	Generate(ctx context.Context, userID int64, in setlists.GenerateInput) (models.Setlist, error)
	Save(ctx context.Context, userID int64, s models.Setlist) (models.Setlist, error)
	List(ctx context.Context, userID int64) ([]models.Setlist, error)
	Get(ctx context.Context, userID int64, id string) (models.Setlist, error)
	Delete(ctx context.Context, userID int64, id string) error
	ShareText(ctx context.Context, userID int64, id string) (string, error)
}

// Option customizes a Server.
type Option func(*Server)

// WithLogger sets the logger used for unexpected errors.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Server) { s.logger = logger.With().Str("component", "httpapi").Logger() }
}

// WithMetrics mounts h at /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithSearch mounts h at /api/v1/search behind authentication.
func WithSearch(h http.Handler) Option {
	return func(s *Server) { s.search = h }
}

// WithModelEnabled reports the model-assisted path in health responses.
func WithModelEnabled(enabled bool) Option {
	return func(s *Server) { s.modelEnabled = enabled }
}

// Server wires HTTP handlers to the underlying services.
type Server struct {
	users    UserService
	songs    SongService
	setlists SetlistService
	verifier auth.Verifier

	metrics      http.Handler
	search       http.Handler
	modelEnabled bool
	logger       zerolog.Logger
}

// New configures a Server.
func New(users UserService, songs SongService, setlists SetlistService, verifier auth.Verifier, opts ...Option) *Server {
	s := &Server{
		users:    users,
		songs:    songs,
		setlists: setlists,
		verifier: verifier,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes exposes the HTTP handlers.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics)
	}

	mux.HandleFunc("GET /api/v1/catalog", s.handleCatalog)
	mux.HandleFunc("POST /api/v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)

	authed := auth.Middleware(s.verifier)

	// Song routes
	mux.Handle("GET /api/v1/songs", authed(http.HandlerFunc(s.handleListSongs)))
	mux.Handle("POST /api/v1/songs", authed(http.HandlerFunc(s.handleAddSong)))
	mux.Handle("DELETE /api/v1/songs/{id}", authed(http.HandlerFunc(s.handleDeleteSong)))

	// Setlist routes
	mux.Handle("POST /api/v1/setlists/generate", authed(http.HandlerFunc(s.handleGenerateSetlist)))
	mux.Handle("GET /api/v1/setlists", authed(http.HandlerFunc(s.handleListSetlists)))
	mux.Handle("POST /api/v1/setlists", authed(http.HandlerFunc(s.handleSaveSetlist)))
	mux.Handle("GET /api/v1/setlists/{id}", authed(http.HandlerFunc(s.handleGetSetlist)))
	mux.Handle("DELETE /api/v1/setlists/{id}", authed(http.HandlerFunc(s.handleDeleteSetlist)))
	mux.Handle("GET /api/v1/setlists/{id}/share", authed(http.HandlerFunc(s.handleShareSetlist)))

	if s.search != nil {
		mux.Handle("GET /api/v1/search", authed(s.search))
	}

	return mux
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status       string `json:"status"`
	Service      string `json:"service"`
	ModelEnabled bool   `json:"modelEnabled"`
}

type catalogResponse struct {
	Genres         []string `json:"genres"`
	EventTypes     []string `json:"eventTypes"`
	DurationLabels []string `json:"durations"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "OK", Service: "bandsetlist", ModelEnabled: s.modelEnabled})
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalogResponse{
		Genres:         setlist.Genres,
		EventTypes:     setlist.EventTypes,
		DurationLabels: setlist.DurationLabels,
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	id, err := s.users.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrUserExists):
			writeJSON(w, http.StatusConflict, errorResponse{Error: "username already taken"})
		default:
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusCreated, struct {
		ID int64 `json:"id"`
	}{ID: id})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON payload"})
		return
	}

	token, err := s.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, store.ErrInvalidCredentials) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
			return
		}
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// writeError maps service errors onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, setlist.ErrNoCandidates):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "No songs available"})
	case errors.Is(err, songs.ErrInvalidSong), errors.Is(err, setlists.ErrInvalidSetlist):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrSongNotFound), errors.Is(err, store.ErrSetlistNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, store.ErrForbidden):
		writeJSON(w, http.StatusForbidden, errorResponse{Error: err.Error()})
	case errors.Is(err, context.Canceled):
		// Client went away; nothing useful can be written.
	default:
		log := logging.FromContext(r.Context(), s.logger)
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}
