package controller

import "context"

type ctxKey string

const connStateCtxKey ctxKey = "conn_state"

// connState tracks what one channel has established so far. It is only
// touched from that channel's read loop.
type connState struct {
	sess     *clientSession
	joined   bool
	roomCode string
	userId   string
	role     string
}

func (c *controller) getConnStateFromCtx(ctx context.Context) *connState {
	return ctx.Value(connStateCtxKey).(*connState)
}
