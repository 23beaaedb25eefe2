package roomclient

import (
	"time"

	"github.com/watchroom/server/pkg/protocol"
)

// send marshals msg onto the current channel. Sending while disconnected
// is a no-op with a warning; the next snapshot resynchronizes state.
func (c *Client) send(msg any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.sendLocked(msg)
}

func (c *Client) sendLocked(msg any) {
	if c.conn == nil {
		c.opts.Logger.Warn("send on closed channel dropped", "message", msg)
		return
	}

	if err := c.conn.WriteJSON(msg); err != nil {
		c.opts.Logger.Warn("failed to send", "error", err)
	}
}

// AddVideo requests a playlist append and applies it optimistically: the
// entry appears immediately under a synthetic id and is reconciled away by
// the next PLAYLIST_UPDATE or SYNC_STATE.
func (c *Client) AddVideo(video protocol.VideoInput) {
	c.mu.Lock()
	c.applyOptimisticAddLocked(video)
	c.notifyStateLocked()

	c.sendLocked(protocol.AddVideoInput{
		Type:   protocol.TypeAddVideo,
		RoomId: c.opts.RoomCode,
		Video:  video,
		UserId: c.opts.UserId,
	})
	c.mu.Unlock()
}

func (c *Client) AddVideos(videos []protocol.VideoInput) {
	c.mu.Lock()
	for _, video := range videos {
		c.applyOptimisticAddLocked(video)
	}
	c.notifyStateLocked()

	c.sendLocked(protocol.AddVideosInput{
		Type:   protocol.TypeAddVideos,
		RoomId: c.opts.RoomCode,
		Videos: videos,
		UserId: c.opts.UserId,
	})
	c.mu.Unlock()
}

func (c *Client) applyOptimisticAddLocked(video protocol.VideoInput) {
	order := 0
	if n := len(c.state.Playlist); n > 0 {
		order = c.state.Playlist[n-1].Order + 1
	}

	c.state.Playlist = append(c.state.Playlist, protocol.PlaylistEntry{
		Id:        "optimistic-" + video.YoutubeId,
		YoutubeId: video.YoutubeId,
		Title:     video.Title,
		Thumbnail: video.Thumbnail,
		AddedBy:   c.opts.UserId,
		Order:     order,
	})
	c.pending[video.YoutubeId] = struct{}{}
}

// Pending reports whether an optimistic add for the external id is still
// awaiting server confirmation.
func (c *Client) Pending(youtubeId string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.pending[youtubeId]
	return ok
}

// Play requests playback start, optimistically flipping the local bit.
func (c *Client) Play() {
	c.mu.Lock()
	c.state.IsPlaying = true
	c.notifyStateLocked()

	c.sendLocked(protocol.PlayInput{Type: protocol.TypePlay, RoomId: c.opts.RoomCode})
	c.mu.Unlock()
}

func (c *Client) Pause() {
	c.mu.Lock()
	c.state.IsPlaying = false
	c.notifyStateLocked()

	c.sendLocked(protocol.PauseInput{Type: protocol.TypePause, RoomId: c.opts.RoomCode})
	c.mu.Unlock()
}

func (c *Client) NextVideo() {
	c.send(protocol.NextVideoInput{Type: protocol.TypeNextVideo, RoomId: c.opts.RoomCode})
}

func (c *Client) SelectVideo(youtubeId string) {
	c.send(protocol.SelectVideoInput{
		Type:      protocol.TypeSelectVideo,
		RoomId:    c.opts.RoomCode,
		YoutubeId: youtubeId,
	})
}

func (c *Client) RemoveVideo(videoId string) {
	c.send(protocol.RemoveVideoInput{
		Type:    protocol.TypeRemoveVideo,
		RoomId:  c.opts.RoomCode,
		VideoId: videoId,
	})
}

// VideoEnded is called by the host when the embedded player reports the
// current video finished. During the post-command suppression window the
// event is the player reacting to our own programmatic change, not a real
// end of playback, and advancing would skip a video.
func (c *Client) VideoEnded() {
	c.mu.Lock()
	suppressed := time.Now().Before(c.suppressUntil)
	c.mu.Unlock()

	if suppressed {
		c.opts.Logger.Debug("video ended during suppression window, ignoring")
		return
	}

	c.NextVideo()
}
