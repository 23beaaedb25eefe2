package roomclient

import (
	"time"

	"github.com/watchroom/server/pkg/protocol"
)

// scheduleHeartbeatLocked arms the next PING. Each PING is followed by a
// watchdog; a missing PONG forcibly closes the channel, which is how
// zombie connections (open in kernel space, delivering nothing) are
// detected.
func (c *Client) scheduleHeartbeatLocked() {
	if c.heartbeatTimer != nil {
		c.heartbeatTimer.Stop()
	}
	c.heartbeatTimer = time.AfterFunc(c.opts.HeartbeatInterval, c.heartbeat)
}

func (c *Client) heartbeat() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unmounted || c.conn == nil {
		return
	}

	c.sendLocked(protocol.PingInput{Type: protocol.TypePing})

	if c.watchdogTimer != nil {
		c.watchdogTimer.Stop()
	}
	c.watchdogTimer = time.AfterFunc(c.opts.PongTimeout, c.watchdogFired)
}

func (c *Client) watchdogFired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unmounted || c.conn == nil {
		return
	}

	c.opts.Logger.Warn("heartbeat timed out, closing channel")
	// The read loop unblocks with an error and drives the reconnect path.
	c.conn.Close()
}

func (c *Client) handlePong() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.watchdogTimer != nil {
		c.watchdogTimer.Stop()
		c.watchdogTimer = nil
	}

	if c.conn != nil && !c.unmounted {
		c.scheduleHeartbeatLocked()
	}
}

// scheduleReportLocked arms the host's periodic position report.
func (c *Client) scheduleReportLocked() {
	if c.opts.Role != protocol.RoleHost || c.opts.PlayerState == nil {
		return
	}

	if c.reportTimer != nil {
		c.reportTimer.Stop()
	}
	c.reportTimer = time.AfterFunc(c.opts.ReportInterval, c.reportPosition)
}

func (c *Client) reportPosition() {
	c.mu.Lock()
	if c.unmounted || c.conn == nil {
		c.mu.Unlock()
		return
	}
	c.scheduleReportLocked()
	c.mu.Unlock()

	// The player callback runs outside the lock; it may call back into
	// the client.
	player, ok := c.opts.PlayerState()
	if !ok {
		return
	}

	duration := player.Duration
	c.send(protocol.SyncTimeInput{
		Type:        protocol.TypeSyncTime,
		RoomId:      c.opts.RoomCode,
		CurrentTime: player.CurrentTime,
		IsPlaying:   player.IsPlaying,
		Duration:    &duration,
	})
}
