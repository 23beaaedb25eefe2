package room

import (
	"context"
	"time"

	"github.com/watchroom/server/pkg/protocol"
)

// SelectVideo switches playback to the given external id and restarts from
// zero.
func (s *service) SelectVideo(ctx context.Context, params *SelectVideoParams) error {
	room, err := s.getRoom(params.RoomCode)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ErrRoomNotFound
	}

	externalId := params.ExternalId
	room.currentVideoId = &externalId
	room.isPlaying = true
	room.currentTime = 0

	persistErr := s.persistPlayback(ctx, room)
	s.logPersistFailure(ctx, room, persistErr)

	room.broadcast(protocol.PlayVideo{
		Type:    protocol.TypePlayVideo,
		VideoId: room.currentVideoId,
	}, nil)

	// The in-memory transition already happened and was broadcast; the
	// error only tells the initiator the durable copy lags.
	return persistErr
}

// NextVideo advances to the successor of the current entry by order. With
// no successor (end of playlist, or the current id is not in the playlist)
// the room goes idle.
func (s *service) NextVideo(ctx context.Context, params *NextVideoParams) error {
	room, err := s.getRoom(params.RoomCode)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ErrRoomNotFound
	}

	currentIdx := -1
	if room.currentVideoId != nil {
		for i, v := range room.videos {
			if v.ExternalId == *room.currentVideoId {
				currentIdx = i
				break
			}
		}
	}

	if currentIdx >= 0 {
		played := &room.videos[currentIdx]
		played.IsPlayed = true
		if err := s.roomRepo.UpdateVideoIsPlayed(ctx, room.id, played.Id, true); err != nil {
			s.logger.WarnContext(ctx, "failed to mark video played",
				"roomCode", room.code,
				"videoId", played.Id,
				"error", err,
			)
		}
	}

	if currentIdx >= 0 && currentIdx+1 < len(room.videos) {
		externalId := room.videos[currentIdx+1].ExternalId
		room.currentVideoId = &externalId
		room.isPlaying = true
		room.currentTime = 0
	} else {
		room.currentVideoId = nil
		room.isPlaying = false
		room.currentTime = 0
	}

	persistErr := s.persistPlayback(ctx, room)
	s.logPersistFailure(ctx, room, persistErr)

	room.broadcast(protocol.PlayVideo{
		Type:    protocol.TypePlayVideo,
		VideoId: room.currentVideoId,
	}, nil)
	room.broadcast(protocol.PlaylistUpdate{
		Type:     protocol.TypePlaylistUpdate,
		Playlist: room.playlistEntries(),
	}, nil)

	return persistErr
}

// SetPlaying flips the authoritative play bit and arms the cooldown that
// shields it from stale host position reports.
func (s *service) SetPlaying(ctx context.Context, params *SetPlayingParams) error {
	room, err := s.getRoom(params.RoomCode)
	if err != nil {
		return err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ErrRoomNotFound
	}

	room.isPlaying = params.Playing
	room.cooldownAt = time.Now()

	if params.Playing {
		room.broadcast(protocol.Play{
			Type:        protocol.TypePlay,
			VideoId:     room.currentVideoId,
			CurrentTime: room.currentTime,
		}, nil)
	} else {
		room.broadcast(protocol.Pause{Type: protocol.TypePause}, nil)
	}

	return nil
}

// ReportPosition records a host position report. The reported currentTime
// always wins; the reported isPlaying is dropped while the play/pause
// cooldown is active. Elapsed time equal to the cooldown counts as expired.
func (s *service) ReportPosition(ctx context.Context, params *ReportPositionParams) (ReportPositionResponse, error) {
	room, err := s.getRoom(params.RoomCode)
	if err != nil {
		return ReportPositionResponse{}, err
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.closed {
		return ReportPositionResponse{}, ErrRoomNotFound
	}

	room.currentTime = params.CurrentTime
	if time.Since(room.cooldownAt) >= s.cfg.PlayPauseCooldown {
		room.isPlaying = params.IsPlaying
	}

	if time.Since(room.lastPersistAt) >= s.cfg.PersistInterval {
		room.lastPersistAt = time.Now()
		// Throttled write; failures are logged and swallowed.
		s.logPersistFailure(ctx, room, s.persistPlayback(ctx, room))
	}

	room.broadcast(protocol.SyncTime{
		Type:        protocol.TypeSyncTime,
		CurrentTime: room.currentTime,
		IsPlaying:   room.isPlaying,
	}, params.Sender)

	return ReportPositionResponse{
		CurrentTime: room.currentTime,
		IsPlaying:   room.isPlaying,
	}, nil
}
