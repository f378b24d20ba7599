package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"codeberg.org/mutker/ventsim/internal/eventlog"
	"codeberg.org/mutker/ventsim/internal/logger"
	"codeberg.org/mutker/ventsim/internal/simulator"
	"github.com/gorilla/websocket"
)

const (
	sendBuffer   = 64
	writeTimeout = 5 * time.Second
)

// MessageType tags a WebSocket message
type MessageType string

const (
	MessageFans    MessageType = "fans"
	MessageReading MessageType = "reading"
	MessageEvent   MessageType = "event"
)

type Message struct {
	Type MessageType `json:"type"`
	Data any         `json:"data"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans readings and log entries out to WebSocket clients. A client
// that cannot keep up is disconnected.
type Hub struct {
	upgrader websocket.Upgrader
	log      logger.Logger
	hello    func() Message

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

func newHub(origins []string, hello func() Message, log logger.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(origins),
		},
		log:     log,
		hello:   hello,
		clients: make(map[*client]struct{}),
	}
}

func originChecker(origins []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, o := range origins {
			if o == "*" || o == origin {
				return true
			}
		}
		return false
	}
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Str("remote_addr", r.RemoteAddr).Msg("Failed to upgrade WebSocket connection")
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	if h.hello != nil {
		if data, err := json.Marshal(h.hello()); err == nil {
			c.send <- data
		}
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.log.Debug().Str("remote_addr", r.RemoteAddr).Msg("WebSocket client connected")

	go h.writeLoop(c)
	go h.readLoop(c)
}

// Reading broadcasts a simulated sample
func (h *Hub) Reading(r simulator.Reading) {
	h.Broadcast(Message{Type: MessageReading, Data: r})
}

// Event broadcasts an event log entry
func (h *Hub) Event(e eventlog.Entry) {
	h.Broadcast(Message{Type: MessageEvent, Data: e})
}

func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Warn().Err(err).Str("type", string(msg.Type)).Msg("Failed to encode message")
		return
	}

	var slow []*client
	h.mu.RLock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.log.Debug().Msg("Dropping slow WebSocket client")
		h.remove(c)
	}
}

// remove unregisters c and ends its write loop
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(c)
			return
		}
	}

	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeTimeout))
}

// readLoop discards client messages and notices disconnects
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug().Err(err).Msg("WebSocket read failed")
			}
			h.remove(c)
			return
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
