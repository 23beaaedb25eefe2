package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// repo is a best-effort TTL cache for upstream metadata lookups. Every
// failure degrades to a miss; the providers remain the source of truth.
type repo struct {
	rc     *redis.Client
	logger *slog.Logger
}

func NewRepo(rc *redis.Client, logger *slog.Logger) *repo {
	return &repo{rc: rc, logger: logger}
}

func (r repo) getKey(key string) string {
	return "mediacache:" + key
}

func (r repo) Get(ctx context.Context, key string) ([]byte, bool) {
	value, err := r.rc.Get(ctx, r.getKey(key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.logger.WarnContext(ctx, "media cache get failed", "key", key, "error", err)
		}

		return nil, false
	}

	return value, true
}

func (r repo) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.rc.Set(ctx, r.getKey(key), value, ttl).Err(); err != nil {
		r.logger.WarnContext(ctx, "media cache set failed", "key", key, "error", err)
	}
}
