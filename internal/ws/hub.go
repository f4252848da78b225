// Package ws pushes progress refresh events to connected browser clients.
package ws

import (
	"encoding/json"
	"sync"
	"time"

	"budgetly/internal/log"

	"github.com/gorilla/websocket"
)

type registration struct {
	conn  *websocket.Conn
	owner string
}

type ownerMessage struct {
	owner string
	data  []byte
}

// Hub tracks WebSocket clients per owner and fans progress refresh events
// out to them. A client only ever receives events for its own owner.
type Hub struct {
	clients    map[*websocket.Conn]string
	broadcast  chan ownerMessage
	register   chan registration
	unregister chan *websocket.Conn
	mu         sync.Mutex
	logger     *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]string),
		broadcast:  make(chan ownerMessage, 16),
		register:   make(chan registration),
		unregister: make(chan *websocket.Conn),
		logger:     logger.WithComponent(log.ComponentWS),
	}
}

// Start begins the hub loop in a background goroutine.
func (h *Hub) Start() {
	go func() {
		for {
			select {
			case reg := <-h.register:
				h.mu.Lock()
				h.clients[reg.conn] = reg.owner
				total := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("WebSocket client connected",
					log.FieldOwner, reg.owner,
					"total_clients", total)
			case conn := <-h.unregister:
				h.mu.Lock()
				if _, ok := h.clients[conn]; ok {
					delete(h.clients, conn)
					conn.Close()
				}
				total := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("WebSocket client disconnected", "total_clients", total)
			case msg := <-h.broadcast:
				h.mu.Lock()
				for conn, owner := range h.clients {
					if owner != msg.owner {
						continue
					}
					if err := conn.WriteMessage(websocket.TextMessage, msg.data); err != nil {
						h.logger.Warn("Failed to send message to client",
							log.FieldOwner, owner,
							log.FieldError, err)
						conn.Close()
						delete(h.clients, conn)
					}
				}
				h.mu.Unlock()
			}
		}
	}()
}

// NotifyProgressChanged tells every client of owner to re-fetch progress.
func (h *Hub) NotifyProgressChanged(owner string) {
	event := map[string]any{
		"type":      "progress_changed",
		"owner":     owner,
		"timestamp": time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("Failed to marshal progress event", log.FieldError, err)
		return
	}

	h.broadcast <- ownerMessage{owner: owner, data: data}
}

// RegisterClient adds a connection belonging to owner.
func (h *Hub) RegisterClient(conn *websocket.Conn, owner string) {
	h.register <- registration{conn: conn, owner: owner}
}

// UnregisterClient removes and closes a connection.
func (h *Hub) UnregisterClient(conn *websocket.Conn) {
	h.unregister <- conn
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
