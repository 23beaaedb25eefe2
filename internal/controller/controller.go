package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/internal/service/media"
	roomservice "github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/protocol"
	"github.com/watchroom/server/pkg/validator"
)

type iRoomService interface {
	CreateRoom(context.Context) (room.Room, error)
	GetRoom(ctx context.Context, code string) (room.Room, []room.Video, error)
	AttachClient(context.Context, *roomservice.AttachClientParams) (protocol.SyncState, error)
	DetachClient(context.Context, *roomservice.DetachClientParams)
	AddVideo(context.Context, *roomservice.AddVideoParams) error
	AddVideos(context.Context, *roomservice.AddVideosParams) error
	RemoveVideo(context.Context, *roomservice.RemoveVideoParams) error
	SelectVideo(context.Context, *roomservice.SelectVideoParams) error
	NextVideo(context.Context, *roomservice.NextVideoParams) error
	SetPlaying(context.Context, *roomservice.SetPlayingParams) error
	ReportPosition(context.Context, *roomservice.ReportPositionParams) (roomservice.ReportPositionResponse, error)
}

type iMediaService interface {
	Search(ctx context.Context, query string) ([]media.SearchResult, error)
	GetVideo(ctx context.Context, videoId string) (media.Video, error)
	GetPlaylist(ctx context.Context, playlistId string) (media.Playlist, error)
}

type controller struct {
	roomService  iRoomService
	mediaService iMediaService
	upgrader     websocket.Upgrader
	validate     *validator.Validator
	logger       *slog.Logger
}

func NewController(roomService iRoomService, mediaService iMediaService, logger *slog.Logger) *controller {
	return &controller{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		roomService:  roomService,
		mediaService: mediaService,
		validate:     validator.NewValidator(),
		logger:       logger,
	}
}
