package media

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mediacache "github.com/watchroom/server/internal/repository/mediacache/redis"
)

func providerResponse(n int) []map[string]any {
	videos := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		videos = append(videos, map[string]any{
			"videoId": fmt.Sprintf("vid-%d", i),
			"title":   fmt.Sprintf("Title %d", i),
			"author":  "Channel",
			"videoThumbnails": []map[string]any{
				{"quality": "medium", "url": fmt.Sprintf("https://thumbs/%d.jpg", i)},
			},
		})
	}

	return videos
}

func TestSearchCapsResults(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/search", r.URL.Path)
		json.NewEncoder(w).Encode(providerResponse(25))
	}))
	defer upstream.Close()

	s := NewService([]string{upstream.URL}, nil, slog.Default())

	results, err := s.Search(context.Background(), "some query")
	require.NoError(t, err)
	assert.Len(t, results, 10)
	assert.Equal(t, "vid-0", results[0].ExternalId)
	assert.Equal(t, "https://thumbs/0.jpg", results[0].Thumbnail)
	assert.Equal(t, "Channel", results[0].ChannelTitle)
}

func TestProviderFallbackOrder(t *testing.T) {
	var brokenCalls atomic.Int32
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		brokenCalls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	working := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(providerResponse(1))
	}))
	defer working.Close()

	s := NewService([]string{broken.URL, working.URL}, nil, slog.Default())

	results, err := s.Search(context.Background(), "q")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, int32(1), brokenCalls.Load(), "first provider is tried first")
}

func TestAllProvidersFailed(t *testing.T) {
	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	s := NewService([]string{broken.URL, broken.URL}, nil, slog.Default())

	_, err := s.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrAllProvidersFailed)
}

func TestGetVideoNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer upstream.Close()

	s := NewService([]string{upstream.URL}, nil, slog.Default())

	_, err := s.GetVideo(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestGetVideo(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/videos/vid-0", r.URL.Path)
		json.NewEncoder(w).Encode(providerResponse(1)[0])
	}))
	defer upstream.Close()

	s := NewService([]string{upstream.URL}, nil, slog.Default())

	video, err := s.GetVideo(context.Background(), "vid-0")
	require.NoError(t, err)
	assert.Equal(t, "vid-0", video.ExternalId)
	assert.Equal(t, "Title 0", video.Title)
}

func TestSearchUsesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	cache := mediacache.NewRepo(rc, slog.Default())

	var calls atomic.Int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		json.NewEncoder(w).Encode(providerResponse(3))
	}))
	defer upstream.Close()

	s := NewService([]string{upstream.URL}, cache, slog.Default())
	ctx := context.Background()

	first, err := s.Search(ctx, "cached query")
	require.NoError(t, err)

	second, err := s.Search(ctx, "cached query")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), calls.Load(), "second lookup must be served from cache")
}

func TestGetPlaylistConcatenatesPages(t *testing.T) {
	pageSize := 3
	totalPages := 2
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")

		videos := []map[string]any{}
		if page == "1" || page == "2" {
			videos = providerResponse(pageSize)
		}

		json.NewEncoder(w).Encode(map[string]any{
			"title":      "My Mix",
			"videoCount": pageSize * totalPages,
			"videos":     videos,
		})
	}))
	defer upstream.Close()

	s := NewService([]string{upstream.URL}, nil, slog.Default())

	playlist, err := s.GetPlaylist(context.Background(), "PL123")
	require.NoError(t, err)
	assert.Equal(t, "My Mix", playlist.Title)
	assert.Equal(t, "PL123", playlist.PlaylistId)
	assert.Len(t, playlist.Videos, pageSize*totalPages)
}

func TestNoProviderConfigured(t *testing.T) {
	s := NewService(nil, nil, slog.Default())

	_, err := s.Search(context.Background(), "q")
	assert.ErrorIs(t, err, ErrNoProviderConfigured)
}
