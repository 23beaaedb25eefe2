package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (c *controller) GetMux() http.Handler {
	r := chi.NewRouter()

	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Route("/api", func(r chi.Router) {
		r.Post("/rooms", c.createRoom)
		r.Get("/rooms/{code}", c.getRoom)

		r.Route("/media", func(r chi.Router) {
			r.Get("/search", c.searchMedia)
			r.Get("/video", c.getMediaVideo)
			r.Get("/playlist", c.getMediaPlaylist)
		})
	})

	r.HandleFunc("/ws", c.serveWS)

	return r
}
