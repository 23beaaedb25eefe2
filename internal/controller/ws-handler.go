package controller

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	roomservice "github.com/watchroom/server/internal/service/room"
	"github.com/watchroom/server/pkg/protocol"
)

func (c *controller) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := c.upgrader.Upgrade(w, r, nil)
	if err != nil {
		c.logger.WarnContext(r.Context(), "failed to upgrade to websocket", "error", err)
		return
	}

	state := &connState{sess: newClientSession(conn, c.logger)}
	go state.sess.writePump()

	ctx := context.WithValue(r.Context(), connStateCtxKey, state)

	err = c.getWSRouter().ServeConn(ctx, conn)
	c.logger.InfoContext(ctx, "connection closed", "error", err)

	if state.joined {
		c.roomService.DetachClient(ctx, &roomservice.DetachClientParams{
			RoomCode: state.roomCode,
			UserId:   state.userId,
			Sink:     state.sess,
		})
	}
	state.sess.Close()
}

// decode unmarshals and validates one inbound frame. Failures are protocol
// errors echoed back to the sender.
func (c *controller) decode(frame json.RawMessage, input any) error {
	if err := json.Unmarshal(frame, input); err != nil {
		return protocolError{message: "Invalid message"}
	}

	if err := c.validate.Validate(input); err != nil {
		return protocolError{message: err.Error()}
	}

	return nil
}

// requireJoined gates everything except JOIN and PING.
func (c *controller) requireJoined(ctx context.Context) (*connState, error) {
	state := c.getConnStateFromCtx(ctx)
	if !state.joined {
		return nil, errNotJoined
	}

	return state, nil
}

func (c *controller) handleJoin(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	state := c.getConnStateFromCtx(ctx)

	var input protocol.JoinInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	// The snapshot is enqueued by AttachClient while the room lock is
	// held, so it always precedes any later broadcast.
	if _, err := c.roomService.AttachClient(ctx, &roomservice.AttachClientParams{
		RoomCode: input.RoomId,
		UserId:   input.UserId,
		Role:     input.Role,
		Sink:     state.sess,
	}); err != nil {
		return err
	}

	state.joined = true
	state.roomCode = input.RoomId
	state.userId = input.UserId
	state.role = input.Role

	return nil
}

func (c *controller) handlePing(ctx context.Context, _ *websocket.Conn, _ json.RawMessage) error {
	state := c.getConnStateFromCtx(ctx)
	state.sess.Enqueue(protocol.Pong{Type: protocol.TypePong})

	return nil
}

func (c *controller) handleAddVideo(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	if _, err := c.requireJoined(ctx); err != nil {
		return err
	}

	var input protocol.AddVideoInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	return c.roomService.AddVideo(ctx, &roomservice.AddVideoParams{
		RoomCode:   input.RoomId,
		ExternalId: input.Video.YoutubeId,
		Title:      input.Video.Title,
		Thumbnail:  input.Video.Thumbnail,
		AddedBy:    input.UserId,
	})
}

func (c *controller) handleAddVideos(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	if _, err := c.requireJoined(ctx); err != nil {
		return err
	}

	var input protocol.AddVideosInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	return c.roomService.AddVideos(ctx, &roomservice.AddVideosParams{
		RoomCode: input.RoomId,
		Videos:   input.Videos,
		AddedBy:  input.UserId,
	})
}

func (c *controller) handleRemoveVideo(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	if _, err := c.requireJoined(ctx); err != nil {
		return err
	}

	var input protocol.RemoveVideoInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	return c.roomService.RemoveVideo(ctx, &roomservice.RemoveVideoParams{
		RoomCode: input.RoomId,
		VideoId:  input.VideoId,
	})
}

func (c *controller) handlePlay(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	if _, err := c.requireJoined(ctx); err != nil {
		return err
	}

	var input protocol.PlayInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	return c.roomService.SetPlaying(ctx, &roomservice.SetPlayingParams{
		RoomCode: input.RoomId,
		Playing:  true,
	})
}

func (c *controller) handlePause(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	if _, err := c.requireJoined(ctx); err != nil {
		return err
	}

	var input protocol.PauseInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	return c.roomService.SetPlaying(ctx, &roomservice.SetPlayingParams{
		RoomCode: input.RoomId,
		Playing:  false,
	})
}

func (c *controller) handleSyncTime(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	state, err := c.requireJoined(ctx)
	if err != nil {
		return err
	}

	var input protocol.SyncTimeInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	_, err = c.roomService.ReportPosition(ctx, &roomservice.ReportPositionParams{
		RoomCode:    input.RoomId,
		CurrentTime: input.CurrentTime,
		IsPlaying:   input.IsPlaying,
		Sender:      state.sess,
	})

	return err
}

func (c *controller) handleNextVideo(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	if _, err := c.requireJoined(ctx); err != nil {
		return err
	}

	var input protocol.NextVideoInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	return c.roomService.NextVideo(ctx, &roomservice.NextVideoParams{
		RoomCode: input.RoomId,
	})
}

func (c *controller) handleSelectVideo(ctx context.Context, _ *websocket.Conn, frame json.RawMessage) error {
	if _, err := c.requireJoined(ctx); err != nil {
		return err
	}

	var input protocol.SelectVideoInput
	if err := c.decode(frame, &input); err != nil {
		return err
	}

	return c.roomService.SelectVideo(ctx, &roomservice.SelectVideoParams{
		RoomCode:   input.RoomId,
		ExternalId: input.YoutubeId,
	})
}
