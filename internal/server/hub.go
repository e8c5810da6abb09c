package server

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/comigor/nexucore/internal/chat"
	"github.com/comigor/nexucore/internal/logger"
)

const (
	clientBuffer = 16
	writeTimeout = 5 * time.Second
)

// Hub fans chat events out to websocket clients. It implements
// chat.Notifier; a client that falls behind loses events rather than
// stalling a turn.
type Hub struct {
	origins []string

	mu      sync.Mutex
	clients map[chan chat.Event]struct{}
}

// NewHub returns a hub accepting websocket connections from origins.
func NewHub(origins []string) *Hub {
	return &Hub{origins: origins, clients: map[chan chat.Event]struct{}{}}
}

// Notify queues e for every connected client.
func (h *Hub) Notify(e chat.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c <- e:
		default:
			logger.L.Warn("Dropping event for slow websocket client", "type", e.Type)
		}
	}
}

// Len is the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) register() chan chat.Event {
	c := make(chan chat.Event, clientBuffer)
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	return c
}

func (h *Hub) unregister(c chan chat.Event) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

// ServeHTTP upgrades the request and streams events until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		logger.L.Error("Failed to accept WebSocket", "error", err)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "bye"); closeErr != nil {
			logger.L.Debug("Failed to close websocket", "error", closeErr)
		}
	}()

	events := h.register()
	defer h.unregister(events)

	// Clients never send; CloseRead handles control frames and ends ctx on close.
	ctx := ws.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-events:
			wctx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(wctx, ws, e)
			cancel()
			if err != nil {
				logger.L.Debug("WebSocket write failed", "error", err)
				return
			}
		}
	}
}
