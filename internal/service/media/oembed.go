package media

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

const oembedEndpoint = "https://www.youtube.com/oembed?url=https://www.youtube.com/watch?v=%s"

// getVideoWithOembed is the last-resort lookup: the oEmbed endpoint serves
// title and thumbnail without any API key, but knows nothing beyond that.
func (s *service) getVideoWithOembed(ctx context.Context, videoId string) (Video, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(oembedEndpoint, videoId), nil)
	if err != nil {
		return Video{}, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return Video{}, fmt.Errorf("failed to get video data with oembed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusBadRequest, http.StatusNotFound:
		return Video{}, ErrVideoNotFound
	default:
		return Video{}, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var result struct {
		Title        string `json:"title"`
		AuthorName   string `json:"author_name"`
		ThumbnailUrl string `json:"thumbnail_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Video{}, fmt.Errorf("failed to decode oembed response: %w", err)
	}

	return Video{
		ExternalId:   videoId,
		Title:        result.Title,
		Thumbnail:    result.ThumbnailUrl,
		ChannelTitle: result.AuthorName,
	}, nil
}
