package room

import (
	"sync"
	"time"

	roomrepo "github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/pkg/protocol"
)

// Sink is the outbound half of one client session. Enqueue must not block;
// it reports false when the client's send queue is full.
type Sink interface {
	Enqueue(msg any) bool
	Close()
}

type session struct {
	userId string
	role   string
	sink   Sink
}

// roomState is the authoritative in-memory model of one live room. All
// reads and writes happen under mu; broadcasts are enqueued while it is
// held so every client observes mutations in processing order.
type roomState struct {
	mu sync.Mutex

	id   string
	code string

	currentVideoId *string
	isPlaying      bool
	currentTime    float64

	videos   []roomrepo.Video
	sessions map[string]*session

	cooldownAt    time.Time
	lastPersistAt time.Time

	closed bool
}

type AttachClientParams struct {
	RoomCode string
	UserId   string
	Role     string
	Sink     Sink
}

type DetachClientParams struct {
	RoomCode string
	UserId   string
	Sink     Sink
}

type AddVideoParams struct {
	RoomCode   string
	ExternalId string
	Title      string
	Thumbnail  string
	AddedBy    string
}

type AddVideosParams struct {
	RoomCode string
	Videos   []protocol.VideoInput
	AddedBy  string
}

type RemoveVideoParams struct {
	RoomCode string
	VideoId  string
}

type NextVideoParams struct {
	RoomCode string
}

type SelectVideoParams struct {
	RoomCode   string
	ExternalId string
}

type SetPlayingParams struct {
	RoomCode string
	Playing  bool
}

type ReportPositionParams struct {
	RoomCode    string
	CurrentTime float64
	IsPlaying   bool
	Sender      Sink
}

type ReportPositionResponse struct {
	CurrentTime float64
	IsPlaying   bool
}
