package media

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

var (
	ErrVideoNotFound        = errors.New("video not found")
	ErrPlaylistNotFound     = errors.New("playlist not found")
	ErrAllProvidersFailed   = errors.New("all metadata providers failed")
	ErrNoProviderConfigured = errors.New("no metadata provider configured")
)

// errUpstreamNotFound marks a definitive upstream 404; callers map it to
// the entity-specific sentinel.
var errUpstreamNotFound = errors.New("upstream entity not found")

const (
	requestTimeout = 8 * time.Second

	maxSearchResults  = 10
	maxPlaylistPages  = 10
	maxPlaylistVideos = 1000

	searchCacheTTL = 15 * time.Minute
	videoCacheTTL  = 24 * time.Hour
)

// Cache stores serialized upstream lookups for a while so popular queries
// do not hit the providers on every request. A nil cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
}

type service struct {
	providers []string
	client    *http.Client
	cache     Cache
	logger    *slog.Logger
}

// NewService builds a lookup service over the given provider base URLs,
// tried in order. Each upstream request carries its own timeout.
func NewService(providers []string, cache Cache, logger *slog.Logger) *service {
	return &service{
		providers: providers,
		client:    &http.Client{Timeout: requestTimeout},
		cache:     cache,
		logger:    logger,
	}
}

func (s *service) cacheGet(ctx context.Context, key string, out any) bool {
	if s.cache == nil {
		return false
	}

	raw, ok := s.cache.Get(ctx, key)
	if !ok {
		return false
	}

	return json.Unmarshal(raw, out) == nil
}

func (s *service) cacheSet(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return
	}

	s.cache.Set(ctx, key, raw, ttl)
}
