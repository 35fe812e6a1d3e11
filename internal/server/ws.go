// Package server provides the HTTP server for the jab reflex trainer.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ayusman/jab/internal/server/api"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow local connections
	},
}

// LiveHandler broadcasts the trial state to WebSocket clients so a UI can
// render the go cue and the reaction readout in real time.
type LiveHandler struct {
	trainer api.Trainer
	clients map[*websocket.Conn]bool
	mu      sync.RWMutex
}

// NewLiveHandler creates a new LiveHandler for the given trainer.
func NewLiveHandler(t api.Trainer) *LiveHandler {
	h := &LiveHandler{
		trainer: t,
		clients: make(map[*websocket.Conn]bool),
	}
	go h.broadcast()
	return h
}

// ServeHTTP handles WebSocket upgrade requests.
func (h *LiveHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket upgrade error: %v", err)
		return
	}
	defer conn.Close()

	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
	}()

	// Keep connection alive by reading messages
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

// broadcast sends the trial state to all connected clients.
func (h *LiveHandler) broadcast() {
	ticker := time.NewTicker(33 * time.Millisecond) // ~30 FPS
	defer ticker.Stop()

	for range ticker.C {
		h.mu.RLock()
		if len(h.clients) == 0 {
			h.mu.RUnlock()
			continue
		}
		h.mu.RUnlock()

		snap := h.trainer.Engine().Snapshot()
		msg, _ := json.Marshal(map[string]any{
			"enabled":     h.trainer.IsEnabled(),
			"phase":       snap.Phase.String(),
			"speed":       h.trainer.Engine().Speed(),
			"reaction":    snap.ReactionSeconds(),
			"peak_speed":  snap.PeakSpeedString(),
			"noise_level": snap.NoiseLevel,
			"timestamp":   time.Now().UnixMilli(),
		})

		h.mu.RLock()
		for conn := range h.clients {
			conn.WriteMessage(websocket.TextMessage, msg)
		}
		h.mu.RUnlock()
	}
}
