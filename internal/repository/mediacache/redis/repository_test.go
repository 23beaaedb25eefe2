package redis

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSet(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	r := NewRepo(rc, slog.Default())
	ctx := context.Background()

	_, ok := r.Get(ctx, "search:q")
	assert.False(t, ok)

	r.Set(ctx, "search:q", []byte(`["a","b"]`), time.Minute)

	value, ok := r.Get(ctx, "search:q")
	require.True(t, ok)
	assert.Equal(t, []byte(`["a","b"]`), value)
}

func TestExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	r := NewRepo(rc, slog.Default())
	ctx := context.Background()

	r.Set(ctx, "video:v1", []byte(`{}`), time.Minute)
	mr.FastForward(2 * time.Minute)

	_, ok := r.Get(ctx, "video:v1")
	assert.False(t, ok)
}

func TestUnreachableRedisDegradesToMiss(t *testing.T) {
	rc := goredis.NewClient(&goredis.Options{Addr: "127.0.0.1:1"})
	r := NewRepo(rc, slog.Default())
	ctx := context.Background()

	r.Set(ctx, "k", []byte("v"), time.Minute)
	_, ok := r.Get(ctx, "k")
	assert.False(t, ok)
}
