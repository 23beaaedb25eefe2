package room

import "errors"

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrVideoNotFound     = errors.New("video not found")
	ErrCodeAlreadyExists = errors.New("room code already exists")
)
