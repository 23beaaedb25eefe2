package gorm

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/watchroom/server/internal/repository/room"
)

type repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) (*repo, error) {
	if err := db.AutoMigrate(&room.Room{}, &room.Video{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &repo{db: db}, nil
}
