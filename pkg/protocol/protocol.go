// Package protocol defines the JSON frames exchanged between the
// coordination server and its clients. Every frame is a flat object with a
// "type" discriminator. External video ids travel as "youtubeId" on the
// wire for compatibility with existing clients.
package protocol

// Client to server.
const (
	TypeJoin        = "JOIN"
	TypeAddVideo    = "ADD_VIDEO"
	TypeAddVideos   = "ADD_VIDEOS"
	TypePlay        = "PLAY"
	TypePause       = "PAUSE"
	TypeSyncTime    = "SYNC_TIME"
	TypeNextVideo   = "NEXT_VIDEO"
	TypeRemoveVideo = "REMOVE_VIDEO"
	TypeSelectVideo = "SELECT_VIDEO"
	TypePing        = "PING"
)

// Server to client.
const (
	TypeSyncState      = "SYNC_STATE"
	TypePlaylistUpdate = "PLAYLIST_UPDATE"
	TypePlayVideo      = "PLAY_VIDEO"
	TypePong           = "PONG"
	TypeError          = "ERROR"
)

const (
	RoleHost  = "host"
	RoleGuest = "guest"
)

type VideoInput struct {
	YoutubeId string `json:"youtubeId" validate:"required"`
	Title     string `json:"title" validate:"required"`
	Thumbnail string `json:"thumbnail"`
}

type JoinInput struct {
	Type   string `json:"type"`
	RoomId string `json:"roomId" validate:"required"`
	UserId string `json:"userId" validate:"required"`
	Role   string `json:"role" validate:"required,oneof=host guest"`
}

type AddVideoInput struct {
	Type   string     `json:"type"`
	RoomId string     `json:"roomId" validate:"required"`
	Video  VideoInput `json:"video"`
	UserId string     `json:"userId"`
}

type AddVideosInput struct {
	Type   string       `json:"type"`
	RoomId string       `json:"roomId" validate:"required"`
	Videos []VideoInput `json:"videos" validate:"required,min=1"`
	UserId string       `json:"userId"`
}

type PlayInput struct {
	Type   string `json:"type"`
	RoomId string `json:"roomId" validate:"required"`
}

type PauseInput struct {
	Type   string `json:"type"`
	RoomId string `json:"roomId" validate:"required"`
}

type SyncTimeInput struct {
	Type        string   `json:"type"`
	RoomId      string   `json:"roomId" validate:"required"`
	CurrentTime float64  `json:"currentTime" validate:"gte=0"`
	IsPlaying   bool     `json:"isPlaying"`
	Duration    *float64 `json:"duration,omitempty"`
}

type NextVideoInput struct {
	Type   string `json:"type"`
	RoomId string `json:"roomId" validate:"required"`
}

type RemoveVideoInput struct {
	Type    string `json:"type"`
	RoomId  string `json:"roomId" validate:"required"`
	VideoId string `json:"videoId" validate:"required"`
}

type SelectVideoInput struct {
	Type      string `json:"type"`
	RoomId    string `json:"roomId" validate:"required"`
	YoutubeId string `json:"youtubeId" validate:"required"`
}

type PingInput struct {
	Type string `json:"type"`
}

// PlaylistEntry is one playlist item as mirrored to clients.
type PlaylistEntry struct {
	Id        string `json:"id"`
	YoutubeId string `json:"youtubeId"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	AddedBy   string `json:"addedBy"`
	IsPlayed  bool   `json:"isPlayed"`
	Order     int    `json:"order"`
}

type SyncState struct {
	Type           string          `json:"type"`
	CurrentVideoId *string         `json:"currentVideoId"`
	IsPlaying      bool            `json:"isPlaying"`
	CurrentTime    float64         `json:"currentTime"`
	Playlist       []PlaylistEntry `json:"playlist"`
}

type PlaylistUpdate struct {
	Type     string          `json:"type"`
	Playlist []PlaylistEntry `json:"playlist"`
}

type Play struct {
	Type        string  `json:"type"`
	VideoId     *string `json:"videoId"`
	CurrentTime float64 `json:"currentTime"`
}

type Pause struct {
	Type string `json:"type"`
}

type SyncTime struct {
	Type        string  `json:"type"`
	CurrentTime float64 `json:"currentTime"`
	IsPlaying   bool    `json:"isPlaying"`
}

type PlayVideo struct {
	Type    string  `json:"type"`
	VideoId *string `json:"videoId"`
}

type Pong struct {
	Type string `json:"type"`
}

type Error struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
