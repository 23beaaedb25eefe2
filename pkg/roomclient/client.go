// Package roomclient maintains one logical connection to a coordination
// server across physical websocket drops. It replays identity on every
// (re)connect, applies the server's snapshot and incremental updates, and
// exposes the mutations a host or guest client needs.
package roomclient

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/watchroom/server/pkg/protocol"
)

type ConnState int

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateConnected
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// State is the client-side mirror of the room.
type State struct {
	CurrentVideoId *string
	IsPlaying      bool
	CurrentTime    float64
	Playlist       []protocol.PlaylistEntry
	LastError      string
}

// PlayerState is what the embedded player reports to the host-side loop.
type PlayerState struct {
	CurrentTime float64
	IsPlaying   bool
	Duration    float64
}

// Command is a playback instruction the server issued to the host player.
type Command struct {
	Type        string // "PLAY", "PAUSE", "PLAY_VIDEO", "SEEK"
	VideoId     *string
	CurrentTime float64
	IsPlaying   bool
}

type Options struct {
	URL      string
	RoomCode string
	UserId   string
	Role     string

	// PlayerState supplies the embedded player's position; required for
	// hosts, ignored for guests. ok=false while the player is not
	// playable suppresses that report.
	PlayerState func() (PlayerState, bool)

	// OnStateChange is invoked with a copy of the mirrored state after
	// every change. OnConnChange is invoked on connection transitions
	// with the reconnect counter for UI display. OnCommand receives
	// playback instructions on the host.
	OnStateChange func(State)
	OnConnChange  func(state ConnState, reconnectCount int)
	OnCommand     func(Command)

	Logger *slog.Logger
	Dialer *websocket.Dialer

	HeartbeatInterval time.Duration
	PongTimeout       time.Duration
	ReportInterval    time.Duration
	SuppressionWindow time.Duration
}

const (
	defaultHeartbeatInterval = 30 * time.Second
	defaultPongTimeout       = 5 * time.Second
	defaultReportInterval    = 2 * time.Second
	defaultSuppressionWindow = 400 * time.Millisecond
)

type Client struct {
	opts Options

	mu        sync.Mutex
	conn      *websocket.Conn
	connState ConnState
	state     State
	pending   map[string]struct{}

	attempts       int
	reconnectCount int
	unmounted      bool

	retryTimer     *time.Timer
	heartbeatTimer *time.Timer
	watchdogTimer  *time.Timer
	reportTimer    *time.Timer

	suppressUntil time.Time
}

func New(opts Options) *Client {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}
	if opts.HeartbeatInterval == 0 {
		opts.HeartbeatInterval = defaultHeartbeatInterval
	}
	if opts.PongTimeout == 0 {
		opts.PongTimeout = defaultPongTimeout
	}
	if opts.ReportInterval == 0 {
		opts.ReportInterval = defaultReportInterval
	}
	if opts.SuppressionWindow == 0 {
		opts.SuppressionWindow = defaultSuppressionWindow
	}

	return &Client{
		opts:    opts,
		pending: make(map[string]struct{}),
	}
}

// Start opens the first connection. It returns immediately; transitions
// are delivered through OnConnChange.
func (c *Client) Start() {
	go c.connect()
}

// Close tears the client down: no further reconnects are scheduled and
// the channel is closed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.unmounted = true
	c.stopTimersLocked()
	if c.retryTimer != nil {
		c.retryTimer.Stop()
		c.retryTimer = nil
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.setConnStateLocked(StateDisconnected)
}

// State returns a copy of the mirrored room state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.copyStateLocked()
}

func (c *Client) ConnState() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.connState
}

func (c *Client) ReconnectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.reconnectCount
}

func (c *Client) connect() {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.setConnStateLocked(StateConnecting)
	c.mu.Unlock()

	conn, resp, err := c.opts.Dialer.Dial(c.opts.URL, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.unmounted {
		if conn != nil {
			conn.Close()
		}
		return
	}

	if err != nil {
		c.opts.Logger.Warn("failed to connect", "error", err)
		// Like the drop path in onDisconnect, take the delay from the
		// current counter and then advance it, so the n-th reconnection
		// attempt since the last successful connect waits Backoff(n-1).
		delay := Backoff(c.attempts)
		c.attempts++
		c.setConnStateLocked(StateDisconnected)
		c.scheduleRetryLocked(delay)
		return
	}

	c.conn = conn
	c.attempts = 0
	c.setConnStateLocked(StateConnected)

	go c.readLoop(conn)

	// Identity replay: the server treats every connection as new, so the
	// JOIN goes out on each successful open.
	c.sendLocked(protocol.JoinInput{
		Type:   protocol.TypeJoin,
		RoomId: c.opts.RoomCode,
		UserId: c.opts.UserId,
		Role:   c.opts.Role,
	})

	c.scheduleHeartbeatLocked()
	c.scheduleReportLocked()
}

func (c *Client) reconnect() {
	c.mu.Lock()
	if c.unmounted {
		c.mu.Unlock()
		return
	}
	c.reconnectCount++
	c.mu.Unlock()

	c.connect()
}

func (c *Client) scheduleRetryLocked(delay time.Duration) {
	if c.retryTimer != nil {
		c.retryTimer.Stop()
	}
	c.retryTimer = time.AfterFunc(delay, c.reconnect)
}

// onDisconnect runs when conn's read loop ends. Stale notifications from
// an already-replaced connection are ignored.
func (c *Client) onDisconnect(conn *websocket.Conn, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != conn {
		return
	}

	c.opts.Logger.Info("connection lost", "error", err)
	conn.Close()
	c.conn = nil
	c.stopTimersLocked()

	if c.unmounted {
		return
	}

	c.setConnStateLocked(StateDisconnected)
	c.scheduleRetryLocked(Backoff(c.attempts))
	c.attempts++
}

func (c *Client) stopTimersLocked() {
	for _, t := range []*time.Timer{c.heartbeatTimer, c.watchdogTimer, c.reportTimer} {
		if t != nil {
			t.Stop()
		}
	}
	c.heartbeatTimer = nil
	c.watchdogTimer = nil
	c.reportTimer = nil
}

func (c *Client) setConnStateLocked(state ConnState) {
	if c.connState == state {
		return
	}
	c.connState = state

	if c.opts.OnConnChange != nil {
		go c.opts.OnConnChange(state, c.reconnectCount)
	}
}

func (c *Client) copyStateLocked() State {
	state := c.state
	state.Playlist = append([]protocol.PlaylistEntry(nil), c.state.Playlist...)

	return state
}

func (c *Client) notifyStateLocked() {
	if c.opts.OnStateChange != nil {
		state := c.copyStateLocked()
		go c.opts.OnStateChange(state)
	}
}
