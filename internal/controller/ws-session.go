package controller

import (
	"log/slog"
	"sync"

	"github.com/gorilla/websocket"
)

// sendQueueSize bounds the per-client outbound queue. A client that cannot
// drain it fast enough is disconnected rather than allowed to stall the
// room's fan-out.
const sendQueueSize = 64

// clientSession owns the outbound half of one websocket connection. It is
// the controller's implementation of the room service's Sink.
type clientSession struct {
	conn      *websocket.Conn
	send      chan any
	done      chan struct{}
	closeOnce sync.Once
	logger    *slog.Logger
}

func newClientSession(conn *websocket.Conn, logger *slog.Logger) *clientSession {
	return &clientSession{
		conn:   conn,
		send:   make(chan any, sendQueueSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Enqueue queues msg for delivery. It never blocks; a full queue reports
// false so the caller can drop the client. Messages enqueued after Close
// are silently discarded.
func (s *clientSession) Enqueue(msg any) bool {
	select {
	case <-s.done:
		return true
	default:
	}

	select {
	case s.send <- msg:
		return true
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *clientSession) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.conn.Close()
	})
}

// writePump serializes all writes to the connection. Send failures close
// the session; the read loop then observes the closed connection and the
// disconnect path runs.
func (s *clientSession) writePump() {
	for {
		select {
		case <-s.done:
			return
		case msg := <-s.send:
			if err := s.conn.WriteJSON(msg); err != nil {
				s.logger.Debug("write failed, closing session", "error", err)
				s.Close()
				return
			}
		}
	}
}
