package wsrouter

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/gorilla/websocket"
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrMalformedFrame = errors.New("malformed frame")
)

// HandlerFunc handles one inbound frame. The frame is the raw message as
// read from the wire; handlers decode it into their own input struct.
type HandlerFunc func(ctx context.Context, conn *websocket.Conn, frame json.RawMessage) error

// ErrorFunc is invoked when a frame cannot be routed or its handler fails.
type ErrorFunc func(ctx context.Context, conn *websocket.Conn, err error)

type WSRouter struct {
	routes  map[string]HandlerFunc
	onError ErrorFunc
}

func New() *WSRouter {
	return &WSRouter{routes: make(map[string]HandlerFunc)}
}

func (r *WSRouter) Handle(messageType string, handler HandlerFunc) {
	r.routes[messageType] = handler
}

func (r *WSRouter) OnError(handler ErrorFunc) {
	r.onError = handler
}

// ServeConn reads frames from conn until a read error and dispatches each
// one on its "type" discriminator. Handler errors do not terminate the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn) error {
	for {
		_, frame, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		var envelope struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(frame, &envelope); err != nil || envelope.Type == "" {
			r.handleError(ctx, conn, ErrMalformedFrame)
			continue
		}

		handler, exists := r.routes[envelope.Type]
		if !exists {
			r.handleError(ctx, conn, ErrUnknownType)
			continue
		}

		if err := handler(ctx, conn, frame); err != nil {
			r.handleError(ctx, conn, err)
		}
	}
}

func (r *WSRouter) handleError(ctx context.Context, conn *websocket.Conn, err error) {
	if r.onError != nil {
		r.onError(ctx, conn, err)
	}
}
