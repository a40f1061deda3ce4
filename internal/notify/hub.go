// Package notify fans new alerts out to the websocket connections of their
// recipients.
package notify

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 5 * time.Second
	sendBuffer = 32
)

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Mobile clients send no Origin header.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks live connections per user. Each connection has its own writer
// goroutine; the hub only enqueues. A client whose buffer is full is dropped.
type Hub struct {
	mu   sync.Mutex
	subs map[uuid.UUID]map[*client]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[*client]struct{})}
}

// Serve registers conn for userID and blocks until the client goes away.
func (h *Hub) Serve(userID uuid.UUID, conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*client]struct{})
	}
	h.subs[userID][c] = struct{}{}
	h.mu.Unlock()

	go writePump(c)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	h.mu.Lock()
	h.removeLocked(userID, c)
	h.mu.Unlock()
}

// removeLocked unregisters c and stops its writer. Safe to call twice.
func (h *Hub) removeLocked(userID uuid.UUID, c *client) {
	set, ok := h.subs[userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.subs, userID)
	}
}

func writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			return
		}
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
		time.Now().Add(time.Second))
}

// Publish queues v as JSON for every connection of userID and returns how
// many accepted it. It never waits on a socket.
func (h *Hub) Publish(userID uuid.UUID, v any) (int, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return 0, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	n := 0
	for c := range h.subs[userID] {
		select {
		case c.send <- payload:
			n++
		default:
			h.removeLocked(userID, c)
		}
	}
	return n, nil
}

func (h *Hub) Subscribers(userID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// Close disconnects everyone, used on shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, set := range h.subs {
		for c := range set {
			h.removeLocked(id, c)
		}
	}
}
