package room

type CreateRoomParams struct {
	Id   string
	Code string
}

type CreateVideoParams struct {
	Id           string
	RoomId       string
	ExternalId   string
	Title        string
	ThumbnailUrl string
	AddedBy      string
	Order        int
}

type RemoveVideoParams struct {
	RoomId  string
	VideoId string
}

type UpdatePlaybackParams struct {
	RoomId         string
	CurrentVideoId *string
	IsPlaying      bool
	CurrentTime    float64
}
