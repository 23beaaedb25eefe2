package media

type SearchResult struct {
	ExternalId   string `json:"externalId"`
	Title        string `json:"title"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
}

type Video struct {
	ExternalId   string `json:"externalId"`
	Title        string `json:"title"`
	Thumbnail    string `json:"thumbnail"`
	ChannelTitle string `json:"channelTitle"`
}

type Playlist struct {
	PlaylistId string         `json:"playlistId"`
	Title      string         `json:"title"`
	VideoCount int            `json:"videoCount"`
	Videos     []SearchResult `json:"videos"`
}
