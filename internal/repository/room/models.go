package room

import "time"

// Room is the durable record of a room. Playback fields mirror the last
// persisted in-memory state; they may lag behind it by up to the position
// persist throttle.
type Room struct {
	Id             string    `gorm:"type:text;primaryKey" json:"id"`
	Code           string    `gorm:"type:varchar(6);uniqueIndex;not null" json:"code"`
	CurrentVideoId *string   `gorm:"type:text" json:"currentVideoId"`
	IsPlaying      bool      `gorm:"not null;default:false" json:"isPlaying"`
	CurrentTime    float64   `gorm:"not null;default:0" json:"currentTime"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updatedAt"`

	Videos []Video `gorm:"foreignKey:RoomId;constraint:OnDelete:CASCADE" json:"videos,omitempty"`
}

func (Room) TableName() string {
	return "rooms"
}

type Video struct {
	Id           string    `gorm:"type:text;primaryKey" json:"id"`
	RoomId       string    `gorm:"type:text;index;not null" json:"roomId"`
	ExternalId   string    `gorm:"type:text;not null" json:"externalId"`
	Title        string    `gorm:"type:text;not null" json:"title"`
	ThumbnailUrl string    `gorm:"type:text" json:"thumbnailUrl"`
	AddedBy      string    `gorm:"type:text;not null" json:"addedBy"`
	IsPlayed     bool      `gorm:"not null;default:false" json:"isPlayed"`
	Order        int       `gorm:"column:sort_order;not null" json:"order"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Video) TableName() string {
	return "videos"
}
