package chatbot

import (
	"sync"

	"github.com/gorilla/websocket"
)

// Hub tracks open chatbot websocket connections so they can be counted and
// closed on shutdown.
type Hub struct {
	connections map[string]*websocket.Conn
	mutex       sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		connections: make(map[string]*websocket.Conn),
	}
}

func (h *Hub) Register(id string, conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	h.connections[id] = conn
}

func (h *Hub) Unregister(id string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if conn, exists := h.connections[id]; exists && conn != nil {
		_ = conn.Close()
		delete(h.connections, id)
	}
}

func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.connections)
}

func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	for id, conn := range h.connections {
		if conn != nil {
			_ = conn.Close()
		}
		delete(h.connections, id)
	}
}
