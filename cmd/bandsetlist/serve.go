package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bandsetlist/internal/app/setlists"
	"bandsetlist/internal/app/songs"
	"bandsetlist/internal/app/users"
	"bandsetlist/internal/auth"
	"bandsetlist/internal/cache"
	corsmw "bandsetlist/internal/http/middleware"
	"bandsetlist/internal/httpapi"
	"bandsetlist/internal/metrics"
	"bandsetlist/internal/search"
	"bandsetlist/internal/store"
	"bandsetlist/shared/go/config"
	"bandsetlist/shared/go/middleware"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

var serveSeedDemo bool

func init() {
	serveCmd.Flags().BoolVar(&serveSeedDemo, "seed-demo", false, "create the demo account and catalog before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer db.Close()

	songCache := cache.New(ctx, cache.Config{
		RedisAddr:     cfg.Cache.RedisAddr,
		RedisPassword: cfg.Cache.RedisPassword,
		RedisDB:       cfg.Cache.RedisDB,
		SongListTTL:   cfg.Cache.SongListTTL,
	}, logger)
	defer songCache.Close()

	m := metrics.New()
	engine := newEngine(cfg.Completion, m)

	dataStore := store.New(db)
	if serveSeedDemo {
		if err := bootstrapDemoData(ctx, db, dataStore); err != nil {
			return err
		}
	}

	tokens := auth.NewTokenManager(cfg.Security.JWTSecret, cfg.Security.TokenTTL)

	userService := users.New(dataStore, tokens)
	songService := songs.New(dataStore, songCache, logger)
	setlistService := setlists.New(dataStore, songService, engine)

	api := httpapi.New(userService, songService, setlistService, tokens,
		httpapi.WithLogger(logger),
		httpapi.WithMetrics(m.Handler()),
		httpapi.WithSearch(search.NewHandler(search.NewPGStore(db), logger)),
		httpapi.WithModelEnabled(engine.ModelEnabled()),
	)

	handler := middleware.Chain(api.Routes(),
		middleware.RequestLogging(logger),
		middleware.Recovery(logger),
		corsmw.CORS(cfg.CORS.AllowedOrigins),
		m.Middleware,
	)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Completion.Timeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("bandsetlist stopped")
	return nil
}
