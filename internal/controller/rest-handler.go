package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/watchroom/server/internal/service/media"
	roomservice "github.com/watchroom/server/internal/service/room"
)

func (c *controller) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		c.logger.Warn("failed to write json response", "error", err)
	}
}

func (c *controller) writeError(w http.ResponseWriter, status int, message string) {
	c.writeJSON(w, status, map[string]string{"error": message})
}

func (c *controller) createRoom(w http.ResponseWriter, r *http.Request) {
	room, err := c.roomService.CreateRoom(r.Context())
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to create room", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to create room")
		return
	}

	c.writeJSON(w, http.StatusCreated, map[string]any{"room": room})
}

func (c *controller) getRoom(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	room, videos, err := c.roomService.GetRoom(r.Context(), code)
	if err != nil {
		if errors.Is(err, roomservice.ErrRoomNotFound) {
			c.writeError(w, http.StatusNotFound, "Room not found")
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get room", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to get room")
		return
	}

	room.Videos = videos
	c.writeJSON(w, http.StatusOK, map[string]any{"room": room})
}

func (c *controller) searchMedia(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		c.writeError(w, http.StatusBadRequest, "q is required")
		return
	}

	results, err := c.mediaService.Search(r.Context(), query)
	if err != nil {
		c.logger.ErrorContext(r.Context(), "failed to search media", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to search media")
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (c *controller) getMediaVideo(w http.ResponseWriter, r *http.Request) {
	videoId := r.URL.Query().Get("id")
	if videoId == "" {
		c.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	video, err := c.mediaService.GetVideo(r.Context(), videoId)
	if err != nil {
		if errors.Is(err, media.ErrVideoNotFound) {
			c.writeError(w, http.StatusNotFound, "Video not found")
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get video", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to get video")
		return
	}

	c.writeJSON(w, http.StatusOK, map[string]any{"result": video})
}

func (c *controller) getMediaPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistId := r.URL.Query().Get("id")
	if playlistId == "" {
		c.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	playlist, err := c.mediaService.GetPlaylist(r.Context(), playlistId)
	if err != nil {
		if errors.Is(err, media.ErrPlaylistNotFound) {
			c.writeError(w, http.StatusNotFound, "Playlist not found")
			return
		}

		c.logger.ErrorContext(r.Context(), "failed to get playlist", "error", err)
		c.writeError(w, http.StatusInternalServerError, "failed to get playlist")
		return
	}

	c.writeJSON(w, http.StatusOK, playlist)
}
