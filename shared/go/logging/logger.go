package logging

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// contextKey is the type for context keys
type contextKey string

const (
	requestIDKey contextKey = "request_id"
	scopeKey     contextKey = "request_scope"
)

// requestScope holds fields learned by inner handlers, such as the
// authenticated user, so outer middleware can log them.
type requestScope struct {
	mu     sync.Mutex
	userID int64
}

// Config holds logging configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// New creates a new logger with the given configuration
func New(cfg Config) zerolog.Logger {
	// Set output
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}

	// Parse log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	if cfg.Format == "text" {
		// Pretty console output for development
		output = zerolog.ConsoleWriter{
			Out:        output,
			TimeFormat: time.RFC3339,
		}
	}

	return zerolog.New(output).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// SetGlobal installs logger as the package-level zerolog logger.
func SetGlobal(logger zerolog.Logger) {
	log.Logger = logger
}

// WithRequestID stores a request ID on ctx.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFrom returns the request ID stored on ctx, if any.
func RequestIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok && id != ""
}

// WithRequestScope attaches an empty request scope to ctx.
func WithRequestScope(ctx context.Context) context.Context {
	return context.WithValue(ctx, scopeKey, &requestScope{})
}

// SetUserID records the authenticated user on the scope carried by ctx.
// It does nothing when ctx has no scope.
func SetUserID(ctx context.Context, userID int64) {
	scope, ok := ctx.Value(scopeKey).(*requestScope)
	if !ok {
		return
	}
	scope.mu.Lock()
	scope.userID = userID
	scope.mu.Unlock()
}

// UserIDFrom returns the user recorded by SetUserID, if any.
func UserIDFrom(ctx context.Context) (int64, bool) {
	scope, ok := ctx.Value(scopeKey).(*requestScope)
	if !ok {
		return 0, false
	}
	scope.mu.Lock()
	defer scope.mu.Unlock()
	return scope.userID, scope.userID > 0
}

// FromContext returns base enriched with the request ID and user carried by
// ctx.
func FromContext(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	requestID, hasID := RequestIDFrom(ctx)
	userID, hasUser := UserIDFrom(ctx)
	if !hasID && !hasUser {
		return base
	}

	c := base.With()
	if hasID {
		c = c.Str("request_id", requestID)
	}
	if hasUser {
		c = c.Int64("user_id", userID)
	}
	return c.Logger()
}
