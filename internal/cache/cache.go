// Package cache keeps per-user song lists in Redis so setlist generation does
// not reread the catalog on every request. Every operation degrades to a
// miss when Redis is absent or failing.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"bandsetlist/shared/go/models"
)

// DefaultSongListTTL bounds how stale a cached song list may get.
const DefaultSongListTTL = 5 * time.Minute

// KeySongs prefixes per-user song list keys.
const KeySongs = "bandsetlist:cache:songs:" // + user_id

// Config contains cache configuration. An empty RedisAddr disables caching.
type Config struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	SongListTTL   time.Duration
}

// SongCache provides Redis-backed song list caching with graceful fallback.
type SongCache struct {
	client *redis.Client
	logger zerolog.Logger
	ttl    time.Duration

	mu       sync.RWMutex
	disabled bool
}

// New creates a song cache. It never fails: an unreachable Redis yields a
// disabled cache.
func New(ctx context.Context, cfg Config, logger zerolog.Logger) *SongCache {
	logger = logger.With().Str("component", "cache").Logger()
	ttl := cfg.SongListTTL
	if ttl <= 0 {
		ttl = DefaultSongListTTL
	}

	if cfg.RedisAddr == "" {
		logger.Info().Msg("song cache disabled, no Redis address configured")
		return &SongCache{logger: logger, ttl: ttl, disabled: true}
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr,
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("Redis unavailable, running without song cache")
		_ = client.Close()
		return &SongCache{logger: logger, ttl: ttl, disabled: true}
	}

	logger.Info().Str("addr", cfg.RedisAddr).Msg("song cache initialized")
	return &SongCache{client: client, logger: logger, ttl: ttl}
}

// Close closes the Redis connection.
func (c *SongCache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// IsAvailable returns true if the cache is operational.
func (c *SongCache) IsAvailable() bool {
	if c == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.disabled && c.client != nil
}

// Songs returns the cached song list for userID, if present.
func (c *SongCache) Songs(ctx context.Context, userID int64) ([]models.Song, bool) {
	if !c.IsAvailable() {
		return nil, false
	}

	data, err := c.client.Get(ctx, songsKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.handleError(err, "get")
		return nil, false
	}

	var songs []models.Song
	if err := json.Unmarshal(data, &songs); err != nil {
		c.logger.Debug().Err(err).Int64("user_id", userID).Msg("discarding undecodable cached songs")
		return nil, false
	}
	return songs, true
}

// SetSongs caches the song list for userID.
func (c *SongCache) SetSongs(ctx context.Context, userID int64, songs []models.Song) error {
	if !c.IsAvailable() {
		return nil
	}

	data, err := json.Marshal(songs)
	if err != nil {
		return fmt.Errorf("marshal songs: %w", err)
	}
	if err := c.client.Set(ctx, songsKey(userID), data, c.ttl).Err(); err != nil {
		c.handleError(err, "set")
		return err
	}
	return nil
}

// InvalidateSongs drops the cached song list for userID.
func (c *SongCache) InvalidateSongs(ctx context.Context, userID int64) error {
	if !c.IsAvailable() {
		return nil
	}
	if err := c.client.Del(ctx, songsKey(userID)).Err(); err != nil {
		c.handleError(err, "delete")
		return err
	}
	return nil
}

// handleError trips the cache off after a Redis failure.
func (c *SongCache) handleError(err error, operation string) {
	c.logger.Warn().Err(err).Str("operation", operation).Msg("disabling song cache due to Redis error")
	c.mu.Lock()
	c.disabled = true
	c.mu.Unlock()
}

func songsKey(userID int64) string {
	return KeySongs + strconv.FormatInt(userID, 10)
}
