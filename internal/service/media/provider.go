package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// providerVideo is the video shape shared by the provider's search, video
// and playlist endpoints.
type providerVideo struct {
	VideoId         string `json:"videoId"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	VideoThumbnails []struct {
		Quality string `json:"quality"`
		Url     string `json:"url"`
	} `json:"videoThumbnails"`
}

func (v providerVideo) thumbnail() string {
	for _, t := range v.VideoThumbnails {
		if t.Quality == "medium" {
			return t.Url
		}
	}
	if len(v.VideoThumbnails) > 0 {
		return v.VideoThumbnails[0].Url
	}

	return ""
}

func (v providerVideo) toSearchResult() SearchResult {
	return SearchResult{
		ExternalId:   v.VideoId,
		Title:        v.Title,
		Thumbnail:    v.thumbnail(),
		ChannelTitle: v.Author,
	}
}

// Search queries each provider in order and returns at most
// maxSearchResults videos from the first provider that answers.
func (s *service) Search(ctx context.Context, query string) ([]SearchResult, error) {
	cacheKey := "search:" + query

	var cached []SearchResult
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	results, err := firstProvider(ctx, s, func(ctx context.Context, base string) ([]SearchResult, error) {
		endpoint := fmt.Sprintf("%s/api/v1/search?q=%s&type=video", base, url.QueryEscape(query))

		var videos []providerVideo
		if err := s.getJSON(ctx, endpoint, &videos); err != nil {
			return nil, err
		}

		results := make([]SearchResult, 0, maxSearchResults)
		for _, v := range videos {
			if v.VideoId == "" {
				continue
			}
			results = append(results, v.toSearchResult())
			if len(results) == maxSearchResults {
				break
			}
		}

		return results, nil
	})
	if err != nil {
		return nil, err
	}

	s.cacheSet(ctx, cacheKey, results, searchCacheTTL)

	return results, nil
}

// GetVideo resolves a single video. When every provider fails it falls
// back to the oEmbed endpoint, which needs no API surface at all.
func (s *service) GetVideo(ctx context.Context, videoId string) (Video, error) {
	cacheKey := "video:" + videoId

	var cached Video
	if s.cacheGet(ctx, cacheKey, &cached) {
		return cached, nil
	}

	video, err := firstProvider(ctx, s, func(ctx context.Context, base string) (Video, error) {
		endpoint := fmt.Sprintf("%s/api/v1/videos/%s", base, url.PathEscape(videoId))

		var v providerVideo
		if err := s.getJSON(ctx, endpoint, &v); err != nil {
			return Video{}, err
		}

		return Video{
			ExternalId:   v.VideoId,
			Title:        v.Title,
			Thumbnail:    v.thumbnail(),
			ChannelTitle: v.Author,
		}, nil
	})
	if err != nil {
		if errors.Is(err, errUpstreamNotFound) {
			return Video{}, ErrVideoNotFound
		}

		video, err = s.getVideoWithOembed(ctx, videoId)
		if err != nil {
			return Video{}, err
		}
	}

	s.cacheSet(ctx, cacheKey, video, videoCacheTTL)

	return video, nil
}

// GetPlaylist walks the provider's paginated playlist endpoint and
// concatenates the pages, bounded by maxPlaylistPages and
// maxPlaylistVideos.
func (s *service) GetPlaylist(ctx context.Context, playlistId string) (Playlist, error) {
	playlist, err := firstProvider(ctx, s, func(ctx context.Context, base string) (Playlist, error) {
		playlist := Playlist{PlaylistId: playlistId}

		for page := 1; page <= maxPlaylistPages; page++ {
			endpoint := fmt.Sprintf("%s/api/v1/playlists/%s?page=%d", base, url.PathEscape(playlistId), page)

			var resp struct {
				Title      string          `json:"title"`
				VideoCount int             `json:"videoCount"`
				Videos     []providerVideo `json:"videos"`
			}
			if err := s.getJSON(ctx, endpoint, &resp); err != nil {
				return Playlist{}, err
			}

			playlist.Title = resp.Title
			playlist.VideoCount = resp.VideoCount

			if len(resp.Videos) == 0 {
				break
			}

			for _, v := range resp.Videos {
				if v.VideoId == "" {
					continue
				}
				playlist.Videos = append(playlist.Videos, v.toSearchResult())
				if len(playlist.Videos) >= maxPlaylistVideos {
					return playlist, nil
				}
			}
		}

		return playlist, nil
	})
	if err != nil {
		if errors.Is(err, errUpstreamNotFound) {
			return Playlist{}, ErrPlaylistNotFound
		}

		return Playlist{}, err
	}

	return playlist, nil
}

// firstProvider tries fn against every configured provider base URL in
// order and returns the first success. A definitive not-found answer ends
// the chain immediately; transport failures move on to the next provider.
func firstProvider[T any](ctx context.Context, s *service, fn func(ctx context.Context, base string) (T, error)) (T, error) {
	var zero T
	if len(s.providers) == 0 {
		return zero, ErrNoProviderConfigured
	}

	var lastErr error
	for _, base := range s.providers {
		result, err := fn(ctx, base)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, errUpstreamNotFound) {
			return zero, err
		}

		s.logger.WarnContext(ctx, "metadata provider failed",
			"provider", base,
			"error", err,
		)
		lastErr = err
	}

	return zero, fmt.Errorf("%w: %w", ErrAllProvidersFailed, lastErr)
}

func (s *service) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return errUpstreamNotFound
	default:
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
