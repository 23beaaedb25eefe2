package gorm

import (
	"context"
	"fmt"

	"github.com/watchroom/server/internal/repository/room"
)

func (r repo) CreateVideo(ctx context.Context, params *room.CreateVideoParams) (room.Video, error) {
	record := room.Video{
		Id:           params.Id,
		RoomId:       params.RoomId,
		ExternalId:   params.ExternalId,
		Title:        params.Title,
		ThumbnailUrl: params.ThumbnailUrl,
		AddedBy:      params.AddedBy,
		Order:        params.Order,
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return room.Video{}, fmt.Errorf("failed to create video: %w", err)
	}

	return record, nil
}

func (r repo) RemoveVideo(ctx context.Context, params *room.RemoveVideoParams) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND room_id = ?", params.VideoId, params.RoomId).
		Delete(&room.Video{})
	if res.Error != nil {
		return fmt.Errorf("failed to remove video: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return room.ErrVideoNotFound
	}

	return nil
}

func (r repo) GetVideos(ctx context.Context, roomId string) ([]room.Video, error) {
	var videos []room.Video
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomId).
		Order("sort_order ASC, created_at ASC, id ASC").
		Find(&videos).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get videos: %w", err)
	}

	return videos, nil
}

func (r repo) UpdateVideoIsPlayed(ctx context.Context, roomId, videoId string, isPlayed bool) error {
	res := r.db.WithContext(ctx).Model(&room.Video{}).
		Where("id = ? AND room_id = ?", videoId, roomId).
		Update("is_played", isPlayed)
	if res.Error != nil {
		return fmt.Errorf("failed to update video: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return room.ErrVideoNotFound
	}

	return nil
}
