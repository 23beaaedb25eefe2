package roomclient

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/pkg/protocol"
)

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			c.onDisconnect(conn, err)
			return
		}

		c.handleFrame(frame)
	}
}

func (c *Client) handleFrame(frame []byte) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(frame, &envelope); err != nil {
		c.opts.Logger.Warn("dropping unparseable frame", "error", err)
		return
	}

	switch envelope.Type {
	case protocol.TypePong:
		c.handlePong()
	case protocol.TypeSyncState:
		var msg protocol.SyncState
		if json.Unmarshal(frame, &msg) == nil {
			c.handleSyncState(msg)
		}
	case protocol.TypePlaylistUpdate:
		var msg protocol.PlaylistUpdate
		if json.Unmarshal(frame, &msg) == nil {
			c.handlePlaylistUpdate(msg)
		}
	case protocol.TypePlay:
		var msg protocol.Play
		if json.Unmarshal(frame, &msg) == nil {
			c.handlePlay(msg)
		}
	case protocol.TypePause:
		c.handlePause()
	case protocol.TypePlayVideo:
		var msg protocol.PlayVideo
		if json.Unmarshal(frame, &msg) == nil {
			c.handlePlayVideo(msg)
		}
	case protocol.TypeSyncTime:
		var msg protocol.SyncTime
		if json.Unmarshal(frame, &msg) == nil {
			c.handleSyncTime(msg)
		}
	case protocol.TypeError:
		var msg protocol.Error
		if json.Unmarshal(frame, &msg) == nil {
			c.handleError(msg)
		}
	default:
		c.opts.Logger.Debug("ignoring unknown frame", "type", envelope.Type)
	}
}

// handleSyncState replaces the whole mirror with the server snapshot and
// discards optimistic entries: whatever survived on the server is in the
// snapshot under its real id.
func (c *Client) handleSyncState(msg protocol.SyncState) {
	c.mu.Lock()

	c.state.CurrentVideoId = msg.CurrentVideoId
	c.state.IsPlaying = msg.IsPlaying
	c.state.CurrentTime = msg.CurrentTime
	c.state.Playlist = msg.Playlist
	c.state.LastError = ""
	c.pending = make(map[string]struct{})

	c.armSuppressionLocked()
	c.notifyStateLocked()
	c.mu.Unlock()

	c.dispatchCommand(Command{
		Type:        "SEEK",
		VideoId:     msg.CurrentVideoId,
		CurrentTime: msg.CurrentTime,
		IsPlaying:   msg.IsPlaying,
	})
}

func (c *Client) handlePlaylistUpdate(msg protocol.PlaylistUpdate) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Playlist = msg.Playlist
	c.pending = make(map[string]struct{})
	c.notifyStateLocked()
}

func (c *Client) handlePlay(msg protocol.Play) {
	c.mu.Lock()
	c.state.IsPlaying = true
	c.state.CurrentTime = msg.CurrentTime
	if msg.VideoId != nil {
		c.state.CurrentVideoId = msg.VideoId
	}
	c.armSuppressionLocked()
	c.notifyStateLocked()
	c.mu.Unlock()

	c.dispatchCommand(Command{Type: "PLAY", VideoId: msg.VideoId, CurrentTime: msg.CurrentTime, IsPlaying: true})
}

func (c *Client) handlePause() {
	c.mu.Lock()
	c.state.IsPlaying = false
	c.armSuppressionLocked()
	c.notifyStateLocked()
	c.mu.Unlock()

	c.dispatchCommand(Command{Type: "PAUSE"})
}

func (c *Client) handlePlayVideo(msg protocol.PlayVideo) {
	c.mu.Lock()
	c.state.CurrentVideoId = msg.VideoId
	c.state.IsPlaying = msg.VideoId != nil
	c.state.CurrentTime = 0
	c.armSuppressionLocked()
	c.notifyStateLocked()
	c.mu.Unlock()

	c.dispatchCommand(Command{Type: "PLAY_VIDEO", VideoId: msg.VideoId, IsPlaying: msg.VideoId != nil})
}

func (c *Client) handleSyncTime(msg protocol.SyncTime) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.CurrentTime = msg.CurrentTime
	c.state.IsPlaying = msg.IsPlaying
	c.notifyStateLocked()
}

// handleError surfaces the message and pessimistically assumes the last
// optimistic mutation failed; the next snapshot resyncs the list.
func (c *Client) handleError(msg protocol.Error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.LastError = msg.Message
	c.pending = make(map[string]struct{})
	c.notifyStateLocked()
}

// armSuppressionLocked opens the window during which the host must not
// echo player events back as user intent.
func (c *Client) armSuppressionLocked() {
	if c.opts.Role == protocol.RoleHost {
		c.suppressUntil = time.Now().Add(c.opts.SuppressionWindow)
	}
}

func (c *Client) dispatchCommand(cmd Command) {
	if c.opts.Role == protocol.RoleHost && c.opts.OnCommand != nil {
		c.opts.OnCommand(cmd)
	}
}
