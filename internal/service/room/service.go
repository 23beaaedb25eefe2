package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	roomrepo "github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/pkg/randstr"
)

var (
	ErrRoomNotFound         = errors.New("room not found")
	ErrVideoNotFound        = errors.New("video not found")
	ErrPlaylistLimitReached = errors.New("playlist limit reached")
)

const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6

	createRoomAttempts = 5
)

type iRoomRepo interface {
	CreateRoom(context.Context, *roomrepo.CreateRoomParams) (roomrepo.Room, error)
	GetRoomByCode(context.Context, string) (roomrepo.Room, error)
	UpdatePlayback(context.Context, *roomrepo.UpdatePlaybackParams) error
	CreateVideo(context.Context, *roomrepo.CreateVideoParams) (roomrepo.Video, error)
	RemoveVideo(context.Context, *roomrepo.RemoveVideoParams) error
	GetVideos(context.Context, string) ([]roomrepo.Video, error)
	UpdateVideoIsPlayed(ctx context.Context, roomId, videoId string, isPlayed bool) error
}

type iGenerator interface {
	GenerateRandomString(length int) string
}

type Config struct {
	PlaylistLimit     int
	PlayPauseCooldown time.Duration
	PersistInterval   time.Duration
}

type service struct {
	mu        sync.Mutex
	rooms     map[string]*roomState
	roomRepo  iRoomRepo
	generator iGenerator
	logger    *slog.Logger
	cfg       Config
}

func NewService(roomRepo iRoomRepo, cfg *Config, logger *slog.Logger) *service {
	return &service{
		rooms:     make(map[string]*roomState),
		roomRepo:  roomRepo,
		generator: randstr.New([]byte(codeAlphabet)),
		logger:    logger,
		cfg:       *cfg,
	}
}

// getRoom returns the materialized in-memory state for code. Mutations only
// target rooms that at least one client has joined.
func (s *service) getRoom(code string) (*roomState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	room, ok := s.rooms[code]
	if !ok {
		return nil, ErrRoomNotFound
	}

	return room, nil
}
