package cache

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"bandsetlist/shared/go/models"
)

func TestDisabledCacheIsANoOp(t *testing.T) {
	ctx := context.Background()

	for name, c := range map[string]*SongCache{
		"no address":  New(ctx, Config{}, zerolog.Nop()),
		"unreachable": New(ctx, Config{RedisAddr: "127.0.0.1:1"}, zerolog.Nop()),
		"nil":         nil,
	} {
		if c.IsAvailable() {
			t.Fatalf("%s: expected cache to be unavailable", name)
		}
		if err := c.SetSongs(ctx, 1, []models.Song{{ID: "s1"}}); err != nil {
			t.Fatalf("%s: SetSongs: %v", name, err)
		}
		if _, ok := c.Songs(ctx, 1); ok {
			t.Fatalf("%s: expected miss", name)
		}
		if err := c.InvalidateSongs(ctx, 1); err != nil {
			t.Fatalf("%s: InvalidateSongs: %v", name, err)
		}
		if err := c.Close(); err != nil {
			t.Fatalf("%s: Close: %v", name, err)
		}
	}
}

func TestSongsKey(t *testing.T) {
	if got := songsKey(42); got != "bandsetlist:cache:songs:42" {
		t.Fatalf("unexpected key %q", got)
	}
}
