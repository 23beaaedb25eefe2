package room

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watchroom/server/pkg/protocol"
)

func seedPlaylist(t *testing.T, s *service, code string, ids ...string) {
	t.Helper()

	for _, id := range ids {
		require.NoError(t, s.AddVideo(context.Background(), &AddVideoParams{
			RoomCode:   code,
			ExternalId: id,
			Title:      id,
			AddedBy:    "u1",
		}))
	}
}

func TestCooldownShieldsPlayBit(t *testing.T) {
	s := newTestService(t, nil)
	code := mustCreateRoom(t, s)
	ctx := context.Background()

	host := attachGuest(t, s, code, "host")
	guest := attachGuest(t, s, code, "guest")
	seedPlaylist(t, s, code, "v1")

	// Guest pauses; host's embedded player lags and still reports playing.
	require.NoError(t, s.SetPlaying(ctx, &SetPlayingParams{RoomCode: code, Playing: false}))

	resp, err := s.ReportPosition(ctx, &ReportPositionParams{
		RoomCode:    code,
		CurrentTime: 10.3,
		IsPlaying:   true,
		Sender:      host,
	})
	require.NoError(t, err)

	assert.False(t, resp.IsPlaying, "stale play bit must be dropped inside the cooldown")
	assert.Equal(t, 10.3, resp.CurrentTime, "position always wins")

	room, err := s.getRoom(code)
	require.NoError(t, err)
	room.mu.Lock()
	assert.False(t, room.isPlaying)
	assert.Equal(t, 10.3, room.currentTime)
	room.mu.Unlock()

	// The broadcast carries the effective values and skips the sender.
	guestMsgs := guest.messages()
	last, ok := guestMsgs[len(guestMsgs)-1].(protocol.SyncTime)
	require.True(t, ok)
	assert.False(t, last.IsPlaying)
	assert.Equal(t, 10.3, last.CurrentTime)

	for _, msg := range host.messages() {
		_, isSyncTime := msg.(protocol.SyncTime)
		assert.False(t, isSyncTime, "SYNC_TIME must not be echoed to its sender")
	}
}

func TestExpiredCooldownAcceptsPlayBit(t *testing.T) {
	// Zero cooldown: any elapsed time reaches the window, so the cooldown
	// has expired by the time the report arrives.
	s := newTestService(t, &Config{
		PlaylistLimit:     25,
		PlayPauseCooldown: 0,
		PersistInterval:   5 * time.Second,
	})
	code := mustCreateRoom(t, s)
	ctx := context.Background()

	host := attachGuest(t, s, code, "host")
	seedPlaylist(t, s, code, "v1")

	require.NoError(t, s.SetPlaying(ctx, &SetPlayingParams{RoomCode: code, Playing: false}))

	resp, err := s.ReportPosition(ctx, &ReportPositionParams{
		RoomCode:    code,
		CurrentTime: 5,
		IsPlaying:   true,
		Sender:      host,
	})
	require.NoError(t, err)
	assert.True(t, resp.IsPlaying)
}

func TestSetPlayingBroadcasts(t *testing.T) {
	s := newTestService(t, nil)
	code := mustCreateRoom(t, s)
	ctx := context.Background()

	sink := attachGuest(t, s, code, "u1")
	seedPlaylist(t, s, code, "v1")

	require.NoError(t, s.SetPlaying(ctx, &SetPlayingParams{RoomCode: code, Playing: false}))
	require.NoError(t, s.SetPlaying(ctx, &SetPlayingParams{RoomCode: code, Playing: true}))

	msgs := sink.messages()

	pause, ok := msgs[len(msgs)-2].(protocol.Pause)
	require.True(t, ok)
	assert.Equal(t, protocol.TypePause, pause.Type)

	play, ok := msgs[len(msgs)-1].(protocol.Play)
	require.True(t, ok)
	require.NotNil(t, play.VideoId)
	assert.Equal(t, "v1", *play.VideoId)
}

func TestNextVideoAdvances(t *testing.T) {
	s := newTestService(t, nil)
	code := mustCreateRoom(t, s)
	ctx := context.Background()

	sink := attachGuest(t, s, code, "u1")
	seedPlaylist(t, s, code, "v1", "v2")

	require.NoError(t, s.NextVideo(ctx, &NextVideoParams{RoomCode: code}))

	room, err := s.getRoom(code)
	require.NoError(t, err)
	room.mu.Lock()
	require.NotNil(t, room.currentVideoId)
	assert.Equal(t, "v2", *room.currentVideoId)
	assert.True(t, room.isPlaying)
	assert.Zero(t, room.currentTime)
	assert.True(t, room.videos[0].IsPlayed, "advanced-past entry is marked played")
	room.mu.Unlock()

	msgs := sink.messages()
	playVideo, ok := msgs[len(msgs)-2].(protocol.PlayVideo)
	require.True(t, ok, "PLAY_VIDEO must precede PLAYLIST_UPDATE")
	require.NotNil(t, playVideo.VideoId)
	assert.Equal(t, "v2", *playVideo.VideoId)

	_, ok = msgs[len(msgs)-1].(protocol.PlaylistUpdate)
	assert.True(t, ok)
}

func TestNextVideoOnLastEntryGoesIdle(t *testing.T) {
	s := newTestService(t, nil)
	code := mustCreateRoom(t, s)
	ctx := context.Background()

	sink := attachGuest(t, s, code, "u1")
	seedPlaylist(t, s, code, "v1", "v2")

	require.NoError(t, s.SelectVideo(ctx, &SelectVideoParams{RoomCode: code, ExternalId: "v2"}))
	require.NoError(t, s.NextVideo(ctx, &NextVideoParams{RoomCode: code}))

	room, err := s.getRoom(code)
	require.NoError(t, err)
	room.mu.Lock()
	assert.Nil(t, room.currentVideoId)
	assert.False(t, room.isPlaying)
	assert.Zero(t, room.currentTime)
	room.mu.Unlock()

	msgs := sink.messages()
	playVideo, ok := msgs[len(msgs)-2].(protocol.PlayVideo)
	require.True(t, ok)
	assert.Nil(t, playVideo.VideoId, "terminal advance broadcasts a null video id")
}

func TestNextVideoWithDanglingPointerGoesIdle(t *testing.T) {
	s := newTestService(t, nil)
	code := mustCreateRoom(t, s)
	ctx := context.Background()

	attachGuest(t, s, code, "u1")
	seedPlaylist(t, s, code, "v1", "v2")

	// Remove the currently playing entry; the pointer dangles until the
	// next advance.
	room, err := s.getRoom(code)
	require.NoError(t, err)
	room.mu.Lock()
	videoId := room.videos[0].Id
	room.mu.Unlock()
	require.NoError(t, s.RemoveVideo(ctx, &RemoveVideoParams{RoomCode: code, VideoId: videoId}))

	require.NoError(t, s.NextVideo(ctx, &NextVideoParams{RoomCode: code}))

	room.mu.Lock()
	defer room.mu.Unlock()
	assert.Nil(t, room.currentVideoId)
	assert.False(t, room.isPlaying)
}

func TestSelectVideoRestartsPlayback(t *testing.T) {
	s := newTestService(t, nil)
	code := mustCreateRoom(t, s)
	ctx := context.Background()

	sink := attachGuest(t, s, code, "u1")
	seedPlaylist(t, s, code, "v1", "v2")

	_, err := s.ReportPosition(ctx, &ReportPositionParams{RoomCode: code, CurrentTime: 42, IsPlaying: true})
	require.NoError(t, err)

	require.NoError(t, s.SelectVideo(ctx, &SelectVideoParams{RoomCode: code, ExternalId: "v2"}))

	room, err := s.getRoom(code)
	require.NoError(t, err)
	room.mu.Lock()
	assert.Equal(t, "v2", *room.currentVideoId)
	assert.True(t, room.isPlaying)
	assert.Zero(t, room.currentTime)
	room.mu.Unlock()

	msgs := sink.messages()
	playVideo, ok := msgs[len(msgs)-1].(protocol.PlayVideo)
	require.True(t, ok)
	assert.Equal(t, "v2", *playVideo.VideoId)
}

func TestMutationsOnUnmaterializedRoom(t *testing.T) {
	s := newTestService(t, nil)
	code := mustCreateRoom(t, s)

	// The durable room exists but nobody joined.
	err := s.SetPlaying(context.Background(), &SetPlayingParams{RoomCode: code, Playing: true})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}
