package app

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/watchroom/server/internal/controller"
	roomgorm "github.com/watchroom/server/internal/repository/room/gorm"
	"github.com/watchroom/server/internal/service/media"
	"github.com/watchroom/server/internal/service/room"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	roomRepo, err := roomgorm.NewRepo(db)
	require.NoError(t, err)

	log := slog.Default()
	roomService := room.NewService(roomRepo, &room.Config{
		PlaylistLimit:     25,
		PlayPauseCooldown: 3 * time.Second,
		PersistInterval:   5 * time.Second,
	}, log)
	mediaService := media.NewService(nil, nil, log)

	ctrl := controller.NewController(roomService, mediaService, log)
	srv := httptest.NewServer(ctrl.GetMux())
	t.Cleanup(srv.Close)

	return srv
}

func createRoom(t *testing.T, srv *httptest.Server) string {
	t.Helper()

	resp, err := http.Post(srv.URL+"/api/rooms", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Room struct {
			Code string `json:"code"`
		} `json:"room"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Room.Code, 6)

	return body.Room.Code
}

func dialWS(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })

	return conn
}

// readFrame reads the next frame; broadcast order within one channel is
// part of the contract, so tests assert on frames strictly in sequence.
func readFrame(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var frame map[string]any
	require.NoError(t, conn.ReadJSON(&frame))

	return frame
}

func expectNoFrame(t *testing.T, conn *websocket.Conn, wait time.Duration) {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(wait)))

	var frame map[string]any
	err := conn.ReadJSON(&frame)
	require.Error(t, err, "unexpected frame: %v", frame)
}

func join(t *testing.T, conn *websocket.Conn, code, userId, role string) map[string]any {
	t.Helper()

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":   "JOIN",
		"roomId": code,
		"userId": userId,
		"role":   role,
	}))

	frame := readFrame(t, conn)
	require.Equal(t, "SYNC_STATE", frame["type"])

	return frame
}

func TestJoinUnknownRoomKeepsChannelOpen(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":   "JOIN",
		"roomId": "ZZZZZZ",
		"userId": "u1",
		"role":   "guest",
	}))

	frame := readFrame(t, conn)
	assert.Equal(t, "ERROR", frame["type"])
	assert.Equal(t, "Room not found", frame["message"])

	// The channel survives the failed JOIN.
	join(t, conn, code, "u1", "guest")
}

func TestMutationBeforeJoinIsRejected(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "PLAY", "roomId": "ABCDEF"}))

	frame := readFrame(t, conn)
	assert.Equal(t, "ERROR", frame["type"])
	assert.Equal(t, "Not joined", frame["message"])
}

func TestPingBeforeJoin(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "PING"}))

	frame := readFrame(t, conn)
	assert.Equal(t, "PONG", frame["type"])
}

func TestUnknownMessageType(t *testing.T) {
	srv := newTestServer(t)
	conn := dialWS(t, srv)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "BOGUS"}))

	frame := readFrame(t, conn)
	assert.Equal(t, "ERROR", frame["type"])
	assert.Equal(t, "Unknown message type", frame["message"])
}

func TestEmptyRoomJoinAddAutoplay(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	guest1 := dialWS(t, srv)
	snapshot := join(t, guest1, code, "guest-1", "guest")
	assert.Nil(t, snapshot["currentVideoId"])
	assert.Equal(t, false, snapshot["isPlaying"])
	assert.Equal(t, float64(0), snapshot["currentTime"])
	assert.Empty(t, snapshot["playlist"])

	guest2 := dialWS(t, srv)
	join(t, guest2, code, "guest-2", "guest")

	require.NoError(t, guest1.WriteJSON(map[string]any{
		"type":   "ADD_VIDEO",
		"roomId": code,
		"video":  map[string]any{"youtubeId": "v1", "title": "T1", "thumbnail": "u1"},
		"userId": "guest-1",
	}))

	for _, conn := range []*websocket.Conn{guest1, guest2} {
		playVideo := readFrame(t, conn)
		require.Equal(t, "PLAY_VIDEO", playVideo["type"], "PLAY_VIDEO must precede PLAYLIST_UPDATE")
		assert.Equal(t, "v1", playVideo["videoId"])

		update := readFrame(t, conn)
		require.Equal(t, "PLAYLIST_UPDATE", update["type"])
		playlist := update["playlist"].([]any)
		require.Len(t, playlist, 1)
		entry := playlist[0].(map[string]any)
		assert.Equal(t, "v1", entry["youtubeId"])
		assert.Equal(t, "T1", entry["title"])
		assert.Equal(t, "guest-1", entry["addedBy"])
	}
}

func TestCooldownAndSenderExclusion(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	host := dialWS(t, srv)
	join(t, host, code, "host-1", "host")

	guest := dialWS(t, srv)
	join(t, guest, code, "guest-1", "guest")

	// Seed one video; drain the autoplay broadcasts.
	require.NoError(t, guest.WriteJSON(map[string]any{
		"type":   "ADD_VIDEO",
		"roomId": code,
		"video":  map[string]any{"youtubeId": "v1", "title": "T1", "thumbnail": ""},
		"userId": "guest-1",
	}))
	for _, conn := range []*websocket.Conn{host, guest} {
		readFrame(t, conn) // PLAY_VIDEO
		readFrame(t, conn) // PLAYLIST_UPDATE
	}

	// Guest pauses; everyone including the sender hears it.
	require.NoError(t, guest.WriteJSON(map[string]any{"type": "PAUSE", "roomId": code}))
	require.Equal(t, "PAUSE", readFrame(t, guest)["type"])
	require.Equal(t, "PAUSE", readFrame(t, host)["type"])

	// The host's embedded player lags and still reports playing.
	require.NoError(t, host.WriteJSON(map[string]any{
		"type":        "SYNC_TIME",
		"roomId":      code,
		"currentTime": 10.3,
		"isPlaying":   true,
	}))

	frame := readFrame(t, guest)
	require.Equal(t, "SYNC_TIME", frame["type"])
	assert.Equal(t, 10.3, frame["currentTime"])
	assert.Equal(t, false, frame["isPlaying"], "cooldown must shield the pause")

	// The report is not echoed to its sender.
	expectNoFrame(t, host, 300*time.Millisecond)
}

func TestDuplicateJoinEvictsOldChannel(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	connA := dialWS(t, srv)
	join(t, connA, code, "u1", "guest")

	connB := dialWS(t, srv)
	join(t, connB, code, "u1", "guest")

	// A's channel is closed by the eviction; its next read fails.
	require.NoError(t, connA.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame map[string]any
	err := connA.ReadJSON(&frame)
	require.Error(t, err, "evicted channel must be closed")

	// Broadcasts reach B.
	require.NoError(t, connB.WriteJSON(map[string]any{
		"type":   "ADD_VIDEO",
		"roomId": code,
		"video":  map[string]any{"youtubeId": "v1", "title": "T1", "thumbnail": ""},
		"userId": "u1",
	}))
	assert.Equal(t, "PLAY_VIDEO", readFrame(t, connB)["type"])
}

func TestRemoveUnknownVideoError(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	conn := dialWS(t, srv)
	join(t, conn, code, "u1", "guest")

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":    "REMOVE_VIDEO",
		"roomId":  code,
		"videoId": "missing",
	}))

	frame := readFrame(t, conn)
	assert.Equal(t, "ERROR", frame["type"])
	assert.Equal(t, "Video not found", frame["message"])
}

func TestRestRoomLifecycle(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	resp, err := http.Get(srv.URL + "/api/rooms/" + code)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Room struct {
			Code   string `json:"code"`
			Videos []any  `json:"videos"`
		} `json:"room"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, code, body.Room.Code)

	missing, err := http.Get(srv.URL + "/api/rooms/ZZZZZZ")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)

	var errBody map[string]string
	require.NoError(t, json.NewDecoder(missing.Body).Decode(&errBody))
	assert.Equal(t, "Room not found", errBody["error"])
}

func TestNextVideoOrdering(t *testing.T) {
	srv := newTestServer(t)
	code := createRoom(t, srv)

	conn := dialWS(t, srv)
	join(t, conn, code, "u1", "guest")

	require.NoError(t, conn.WriteJSON(map[string]any{
		"type":   "ADD_VIDEOS",
		"roomId": code,
		"videos": []map[string]any{
			{"youtubeId": "v1", "title": "T1"},
			{"youtubeId": "v2", "title": "T2"},
		},
		"userId": "u1",
	}))
	readFrame(t, conn) // PLAY_VIDEO v1
	readFrame(t, conn) // PLAYLIST_UPDATE

	// Advance past v1, then past v2: the second advance is terminal.
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "NEXT_VIDEO", "roomId": code}))
	playVideo := readFrame(t, conn)
	require.Equal(t, "PLAY_VIDEO", playVideo["type"])
	assert.Equal(t, "v2", playVideo["videoId"])
	require.Equal(t, "PLAYLIST_UPDATE", readFrame(t, conn)["type"])

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "NEXT_VIDEO", "roomId": code}))
	playVideo = readFrame(t, conn)
	require.Equal(t, "PLAY_VIDEO", playVideo["type"])
	assert.Nil(t, playVideo["videoId"], "terminal advance carries a null video id")
	require.Equal(t, "PLAYLIST_UPDATE", readFrame(t, conn)["type"])
}

func TestAppConfigValidate(t *testing.T) {
	cfg := &AppConfig{}
	require.Error(t, cfg.Validate())

	cfg = &AppConfig{DatabaseURL: ":memory:", PlaylistLimit: 10}
	require.NoError(t, cfg.Validate())
}
