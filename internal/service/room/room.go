package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"golang.org/x/exp/slices"

	roomrepo "github.com/watchroom/server/internal/repository/room"
	"github.com/watchroom/server/pkg/protocol"
)

// CreateRoom creates the durable record for a new room. The in-memory state
// materializes lazily on the first AttachClient.
func (s *service) CreateRoom(ctx context.Context) (roomrepo.Room, error) {
	var lastErr error
	for i := 0; i < createRoomAttempts; i++ {
		room, err := s.roomRepo.CreateRoom(ctx, &roomrepo.CreateRoomParams{
			Id:   ulid.Make().String(),
			Code: s.generator.GenerateRandomString(codeLength),
		})
		if err == nil {
			return room, nil
		}
		if !errors.Is(err, roomrepo.ErrCodeAlreadyExists) {
			return roomrepo.Room{}, err
		}

		lastErr = err
	}

	return roomrepo.Room{}, fmt.Errorf("failed to generate unique room code: %w", lastErr)
}

func (s *service) GetRoom(ctx context.Context, code string) (roomrepo.Room, []roomrepo.Video, error) {
	room, err := s.roomRepo.GetRoomByCode(ctx, code)
	if err != nil {
		if errors.Is(err, roomrepo.ErrRoomNotFound) {
			return roomrepo.Room{}, nil, ErrRoomNotFound
		}

		return roomrepo.Room{}, nil, err
	}

	videos, err := s.roomRepo.GetVideos(ctx, room.Id)
	if err != nil {
		return roomrepo.Room{}, nil, err
	}

	return room, videos, nil
}

// AttachClient materializes the room state if needed, evicts any existing
// session with the same user id and returns the snapshot for the new client.
func (s *service) AttachClient(ctx context.Context, params *AttachClientParams) (protocol.SyncState, error) {
	var room *roomState
	for {
		var err error
		room, err = s.materializeRoom(ctx, params.RoomCode)
		if err != nil {
			return protocol.SyncState{}, err
		}

		room.mu.Lock()
		if !room.closed {
			break
		}
		// Lost a race with the garbage collection of an emptied room;
		// materialize a fresh state.
		room.mu.Unlock()
	}
	defer room.mu.Unlock()

	if prev, ok := room.sessions[params.UserId]; ok {
		s.logger.InfoContext(ctx, "evicting session",
			"roomCode", params.RoomCode,
			"userId", params.UserId,
		)
		prev.sink.Close()
	}

	room.sessions[params.UserId] = &session{
		userId: params.UserId,
		role:   params.Role,
		sink:   params.Sink,
	}

	// Enqueued under the room lock so the snapshot precedes any broadcast
	// triggered by a later mutation.
	snapshot := room.snapshot()
	params.Sink.Enqueue(snapshot)

	return snapshot, nil
}

// DetachClient removes the session if it still owns the channel; a session
// replaced by a newer JOIN with the same user id is left untouched. The
// room's in-memory state is dropped when its last client leaves.
func (s *service) DetachClient(ctx context.Context, params *DetachClientParams) {
	room, err := s.getRoom(params.RoomCode)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	room.mu.Lock()
	defer room.mu.Unlock()

	current, ok := room.sessions[params.UserId]
	if !ok || current.sink != params.Sink {
		return
	}

	delete(room.sessions, params.UserId)

	if len(room.sessions) == 0 {
		room.closed = true
		delete(s.rooms, params.RoomCode)
		s.logger.InfoContext(ctx, "room state released", "roomCode", params.RoomCode)
	}
}

func (s *service) materializeRoom(ctx context.Context, code string) (*roomState, error) {
	s.mu.Lock()
	if room, ok := s.rooms[code]; ok {
		s.mu.Unlock()
		return room, nil
	}
	s.mu.Unlock()

	// Seed outside the registry lock; concurrent joins race to insert and
	// the loser's seed is discarded.
	record, err := s.roomRepo.GetRoomByCode(ctx, code)
	if err != nil {
		if errors.Is(err, roomrepo.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}

		return nil, err
	}

	videos, err := s.roomRepo.GetVideos(ctx, record.Id)
	if err != nil {
		return nil, err
	}

	room := &roomState{
		id:             record.Id,
		code:           record.Code,
		currentVideoId: record.CurrentVideoId,
		isPlaying:      record.IsPlaying,
		currentTime:    record.CurrentTime,
		videos:         videos,
		sessions:       make(map[string]*session),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.rooms[code]; ok {
		return existing, nil
	}
	s.rooms[code] = room

	return room, nil
}

// broadcast enqueues msg to every session, optionally excluding one sink.
// Best effort: a full queue closes that client's channel and delivery to
// the remaining sessions continues.
func (r *roomState) broadcast(msg any, exclude Sink) {
	for _, sess := range r.sessions {
		if exclude != nil && sess.sink == exclude {
			continue
		}

		if !sess.sink.Enqueue(msg) {
			sess.sink.Close()
		}
	}
}

func (r *roomState) snapshot() protocol.SyncState {
	return protocol.SyncState{
		Type:           protocol.TypeSyncState,
		CurrentVideoId: r.currentVideoId,
		IsPlaying:      r.isPlaying,
		CurrentTime:    r.currentTime,
		Playlist:       r.playlistEntries(),
	}
}

func (r *roomState) playlistEntries() []protocol.PlaylistEntry {
	entries := make([]protocol.PlaylistEntry, 0, len(r.videos))
	for _, v := range r.videos {
		entries = append(entries, protocol.PlaylistEntry{
			Id:        v.Id,
			YoutubeId: v.ExternalId,
			Title:     v.Title,
			Thumbnail: v.ThumbnailUrl,
			AddedBy:   v.AddedBy,
			IsPlayed:  v.IsPlayed,
			Order:     v.Order,
		})
	}

	return entries
}

func (r *roomState) sortVideos() {
	slices.SortFunc(r.videos, func(a, b roomrepo.Video) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Compare(b.CreatedAt)
		}

		return cmpString(a.Id, b.Id)
	})
}

func cmpString(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// persistPlayback writes the playback triple through to the durable store.
// Called under the room lock.
func (s *service) persistPlayback(ctx context.Context, room *roomState) error {
	return s.roomRepo.UpdatePlayback(ctx, &roomrepo.UpdatePlaybackParams{
		RoomId:         room.id,
		CurrentVideoId: room.currentVideoId,
		IsPlaying:      room.isPlaying,
		CurrentTime:    room.currentTime,
	})
}

func (s *service) logPersistFailure(ctx context.Context, room *roomState, err error) {
	if err != nil {
		s.logger.WarnContext(ctx, "failed to persist playback state",
			slog.String("roomCode", room.code),
			slog.Any("error", err),
		)
	}
}
