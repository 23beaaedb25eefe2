package controller

import (
	"context"
	"errors"

	"github.com/gorilla/websocket"

	roomservice "github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/protocol"
	"github.com/watchroom/server/pkg/wsrouter"
)

var errNotJoined = errors.New("not joined")

// protocolError carries a message that is safe to echo to the client.
type protocolError struct {
	message string
}

func (e protocolError) Error() string {
	return e.message
}

func (c *controller) getWSRouter() *wsrouter.WSRouter {
	mux := wsrouter.New()

	mux.Handle(protocol.TypeJoin, c.handleJoin)
	mux.Handle(protocol.TypePing, c.handlePing)

	// playlist
	mux.Handle(protocol.TypeAddVideo, c.handleAddVideo)
	mux.Handle(protocol.TypeAddVideos, c.handleAddVideos)
	mux.Handle(protocol.TypeRemoveVideo, c.handleRemoveVideo)

	// player
	mux.Handle(protocol.TypePlay, c.handlePlay)
	mux.Handle(protocol.TypePause, c.handlePause)
	mux.Handle(protocol.TypeSyncTime, c.handleSyncTime)
	mux.Handle(protocol.TypeNextVideo, c.handleNextVideo)
	mux.Handle(protocol.TypeSelectVideo, c.handleSelectVideo)

	mux.OnError(c.handleWSError)

	return mux
}

// handleWSError replies to the offending client with an ERROR frame.
// Errors are never fanned out.
func (c *controller) handleWSError(ctx context.Context, _ *websocket.Conn, err error) {
	state := c.getConnStateFromCtx(ctx)

	var message string
	var pe protocolError
	switch {
	case errors.As(err, &pe):
		message = pe.message
	case errors.Is(err, errNotJoined):
		message = "Not joined"
	case errors.Is(err, roomservice.ErrRoomNotFound):
		message = "Room not found"
	case errors.Is(err, roomservice.ErrVideoNotFound):
		message = "Video not found"
	case errors.Is(err, roomservice.ErrPlaylistLimitReached):
		message = "Playlist limit reached"
	case errors.Is(err, wsrouter.ErrUnknownType):
		message = "Unknown message type"
	case errors.Is(err, wsrouter.ErrMalformedFrame):
		message = "Invalid message"
	default:
		c.logger.ErrorContext(ctx, "ws handler failed", "error", err)
		message = "Internal error"
	}

	state.sess.Enqueue(protocol.Error{
		Type:    protocol.TypeError,
		Message: message,
	})
}
