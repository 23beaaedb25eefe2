package gorm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) CreateRoom(ctx context.Context, params *room.CreateRoomParams) (room.Room, error) {
	record := room.Room{
		Id:   params.Id,
		Code: params.Code,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if isUniqueViolation(err) {
			return room.Room{}, room.ErrCodeAlreadyExists
		}

		return room.Room{}, fmt.Errorf("failed to create room: %w", err)
	}

	return record, nil
}

func (r repo) GetRoomByCode(ctx context.Context, code string) (room.Room, error) {
	var record room.Room
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return room.Room{}, room.ErrRoomNotFound
		}

		return room.Room{}, fmt.Errorf("failed to get room: %w", err)
	}

	return record, nil
}

func (r repo) UpdatePlayback(ctx context.Context, params *room.UpdatePlaybackParams) error {
	res := r.db.WithContext(ctx).Model(&room.Room{}).
		Where("id = ?", params.RoomId).
		Updates(map[string]any{
			"current_video_id": params.CurrentVideoId,
			"is_playing":       params.IsPlaying,
			"current_time":     params.CurrentTime,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update playback: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return room.ErrRoomNotFound
	}

	return nil
}

// isUniqueViolation matches both the postgres and the sqlite flavor of a
// unique-index failure; gorm does not normalize them.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	msg := err.Error()
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "UNIQUE constraint")
}
