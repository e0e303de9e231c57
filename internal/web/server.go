package web

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/playforge/tictactoe/internal/app"
)

// NewServer wires routes and returns an http.Handler. checkOrigin guards
// websocket upgrades; nil falls back to the gorilla same-origin default.
func NewServer(s *app.Service, log *zap.Logger, checkOrigin func(r *http.Request) bool) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}
	r := chi.NewRouter()
	h := &handlers{
		svc:      s,
		tpl:      loadTemplates(),
		log:      log,
		upgrader: websocket.Upgrader{CheckOrigin: checkOrigin},
	}
	// Broadcast payloads are the same board fragment the play handler returns.
	s.SetRenderer(func(gs app.GameState) []byte { return h.renderBoard(gs, "") })
	r.Get("/", h.index)
	r.Post("/game", h.create)
	r.Route("/game/{id}", func(r chi.Router) {
		r.Get("/", h.view)
		r.Post("/join", h.join)
		r.Post("/play", h.play)
		r.Post("/reset", h.reset)
		r.Get("/events", h.events)
		r.Get("/ws", h.ws)
	})
	return r
}
