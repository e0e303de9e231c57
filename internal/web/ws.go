package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

// wsMessage is the JSON envelope for websocket traffic in both directions.
type wsMessage struct {
	Type     string      `json:"type"`
	Contents interface{} `json:"contents,omitempty"`
}

// playContents is the expected contents of a "play" message.
type playContents struct {
	Cell int `mapstructure:"cell"`
}

const wsIdlePingInterval = 30 * time.Second

// ws upgrades the request and bridges the connection to the game: inbound
// "play"/"reset" messages drive the service, outbound frames are the same
// board fragments the SSE endpoint emits.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	pid := ensurePlayerCookie(w, r)
	_, _, _ = h.svc.Join(id, pid)

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.String("game_id", id), zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ch, unsub := h.svc.Subscribe(ctx, id)
	defer unsub()

	// Push the current position so a fresh connection sees the board.
	// Writes are single-threaded: this happens before the writer starts.
	if gs, ok := h.svc.Get(id); ok {
		_ = conn.WriteMessage(websocket.TextMessage, h.renderBoard(*gs, ""))
	}

	// Single writer: board updates and idle pings. Cancelling the
	// subscription closes ch and ends the writer.
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		if err := writeWithHeartbeat(conn, ch); err != nil {
			h.log.Debug("websocket write ended", zap.String("game_id", id), zap.Error(err))
		}
	}()

	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			cancel()
			<-writerDone
			return
		}
		switch msg.Type {
		case "play":
			var c playContents
			if err := mapstructure.Decode(msg.Contents, &c); err != nil {
				h.log.Debug("bad play message", zap.String("game_id", id), zap.Error(err))
				continue
			}
			if _, err := h.svc.Play(id, pid, c.Cell); err != nil {
				h.log.Debug("websocket move rejected",
					zap.String("game_id", id),
					zap.Int("cell", c.Cell),
					zap.Error(err))
			}
		case "reset":
			if _, err := h.svc.Reset(id, pid); err != nil {
				h.log.Debug("websocket reset rejected", zap.String("game_id", id), zap.Error(err))
			}
		}
	}
}

// writeWithHeartbeat forwards payloads to the connection, pinging when the
// link has been idle. Returns when send closes or a write fails.
func writeWithHeartbeat(conn *websocket.Conn, send <-chan []byte) error {
	ticker := time.NewTicker(wsIdlePingInterval)
	defer ticker.Stop()
	lastWrite := time.Now()
	ping, _ := json.Marshal(wsMessage{Type: "ping"})

	for {
		select {
		case msg, ok := <-send:
			if !ok {
				return nil
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return err
			}
			lastWrite = time.Now()
		case <-ticker.C:
			if time.Since(lastWrite) < wsIdlePingInterval {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, ping); err != nil {
				return err
			}
			lastWrite = time.Now()
		}
	}
}
