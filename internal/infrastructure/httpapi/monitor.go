package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MonitorEvent notifies connected clients of capture lifecycle changes:
// "uploaded", "deleted", "compared", "trimmed", "cleared".
type MonitorEvent struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Ref  string `json:"ref,omitempty"`
	File string `json:"file,omitempty"`
}

// MonitorHub fans MonitorEvents out to websocket clients.
type MonitorHub struct {
	mu       sync.RWMutex
	clients  map[*websocket.Conn]struct{}
	upgrader websocket.Upgrader
	wmu      sync.Mutex
}

func NewMonitorHub() *MonitorHub {
	return &MonitorHub{
		clients:  make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

func (h *MonitorHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	c, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	_ = c.SetReadDeadline(time.Time{})
	for {
		// keepalive reads to detect client close
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	_ = c.Close()
}

func (h *MonitorHub) Broadcast(ev MonitorEvent) {
	data, _ := json.Marshal(ev)
	// snapshot clients to avoid holding the read lock during writes
	h.mu.RLock()
	clients := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	// serialize writes; gorilla conns do not allow concurrent writers
	h.wmu.Lock()
	defer h.wmu.Unlock()
	for _, c := range clients {
		_ = c.SetWriteDeadline(time.Now().Add(2 * time.Second))
		_ = c.WriteMessage(websocket.TextMessage, data)
	}
}
