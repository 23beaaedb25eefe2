package room

import (
	"context"

	"github.com/oklog/ulid/v2"

	roomrepo "github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/pkg/protocol"
)

// AddVideo appends one entry to the playlist. Adding to an idle room
// auto-starts playback of the added video.
func (s *service) AddVideo(ctx context.Context, params *AddVideoParams) error {
	room, err := s.getRoom(params.RoomCode)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ErrRoomNotFound
	}

	if _, err := s.appendVideo(ctx, room, &protocol.VideoInput{
		YoutubeId: params.ExternalId,
		Title:     params.Title,
		Thumbnail: params.Thumbnail,
	}, params.AddedBy); err != nil {
		return err
	}

	room.broadcast(protocol.PlaylistUpdate{
		Type:     protocol.TypePlaylistUpdate,
		Playlist: room.playlistEntries(),
	}, nil)

	return nil
}

// AddVideos is the bulk variant; input order is preserved and the idle
// auto-start applies to the first appended video.
func (s *service) AddVideos(ctx context.Context, params *AddVideosParams) error {
	room, err := s.getRoom(params.RoomCode)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ErrRoomNotFound
	}

	for i := range params.Videos {
		if _, err := s.appendVideo(ctx, room, &params.Videos[i], params.AddedBy); err != nil {
			return err
		}
	}

	room.broadcast(protocol.PlaylistUpdate{
		Type:     protocol.TypePlaylistUpdate,
		Playlist: room.playlistEntries(),
	}, nil)

	return nil
}

// appendVideo persists and appends one entry under the room lock. If the
// room was idle it transitions to playing the new video and broadcasts
// PLAY_VIDEO ahead of the caller's PLAYLIST_UPDATE.
func (s *service) appendVideo(ctx context.Context, room *roomState, input *protocol.VideoInput, addedBy string) (roomrepo.Video, error) {
	if s.cfg.PlaylistLimit > 0 && len(room.videos) >= s.cfg.PlaylistLimit {
		return roomrepo.Video{}, ErrPlaylistLimitReached
	}

	order := 0
	if n := len(room.videos); n > 0 {
		order = room.videos[n-1].Order + 1
	}

	video, err := s.roomRepo.CreateVideo(ctx, &roomrepo.CreateVideoParams{
		Id:           ulid.Make().String(),
		RoomId:       room.id,
		ExternalId:   input.YoutubeId,
		Title:        input.Title,
		ThumbnailUrl: input.Thumbnail,
		AddedBy:      addedBy,
		Order:        order,
	})
	if err != nil {
		return roomrepo.Video{}, err
	}

	room.videos = append(room.videos, video)
	room.sortVideos()

	if room.currentVideoId == nil {
		externalId := video.ExternalId
		room.currentVideoId = &externalId
		room.isPlaying = true
		room.currentTime = 0

		s.logPersistFailure(ctx, room, s.persistPlayback(ctx, room))

		room.broadcast(protocol.PlayVideo{
			Type:    protocol.TypePlayVideo,
			VideoId: room.currentVideoId,
		}, nil)
	}

	return video, nil
}

// RemoveVideo deletes a playlist entry. The playback pointer is left alone
// even when the removed entry is the one currently selected; it resolves on
// the next NEXT_VIDEO or SELECT_VIDEO.
func (s *service) RemoveVideo(ctx context.Context, params *RemoveVideoParams) error {
	room, err := s.getRoom(params.RoomCode)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ErrRoomNotFound
	}

	idx := -1
	for i, v := range room.videos {
		if v.Id == params.VideoId {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrVideoNotFound
	}

	if err := s.roomRepo.RemoveVideo(ctx, &roomrepo.RemoveVideoParams{
		RoomId:  room.id,
		VideoId: params.VideoId,
	}); err != nil {
		return err
	}

	room.videos = append(room.videos[:idx], room.videos[idx+1:]...)

	room.broadcast(protocol.PlaylistUpdate{
		Type:     protocol.TypePlaylistUpdate,
		Playlist: room.playlistEntries(),
	}, nil)

	return nil
}
