// Package api: live event streams.
//
// Every Broadcaster event is delivered to browsers over SSE (GET /events,
// GET /api/events) and over WebSocket (GET /ws). An observer is registered
// per connection and removed as soon as the transport closes, so a dead
// browser never accumulates undelivered events.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// The demo frontend is served from a different origin.
		return true
	},
}

// eventsHandler streams broadcast events as server-sent events, one JSON
// object per message.
func (s *Server) eventsHandler(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		slog.Error("Server.eventsHandler: response writer does not support streaming")
		writeJSONResponse(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	obs := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(obs.ID)
	slog.Debug("Server.eventsHandler: SSE client connected", "observer_id", obs.ID)

	for {
		select {
		case <-r.Context().Done():
			slog.Debug("Server.eventsHandler: SSE client disconnected", "observer_id", obs.ID)
			return
		case ev, open := <-obs.Events():
			if !open {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				slog.Error("Server.eventsHandler: failed to marshal event", "error", err, "event_type", ev.Type)
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				slog.Debug("Server.eventsHandler: write failed, dropping client", "observer_id", obs.ID, "error", err)
				return
			}
			flusher.Flush()
		}
	}
}

// websocketHandler streams the same events over a WebSocket connection.
func (s *Server) websocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("Server.websocketHandler: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	obs := s.broadcaster.Subscribe()
	defer s.broadcaster.Unsubscribe(obs.ID)
	slog.Debug("Server.websocketHandler: client connected", "observer_id", obs.ID)

	// The read loop exists only to detect the peer closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			slog.Debug("Server.websocketHandler: client disconnected", "observer_id", obs.ID)
			return
		case <-r.Context().Done():
			return
		case ev, open := <-obs.Events():
			if !open {
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				slog.Debug("Server.websocketHandler: write failed, dropping client", "observer_id", obs.ID, "error", err)
				return
			}
		}
	}
}
