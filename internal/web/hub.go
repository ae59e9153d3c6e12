package web

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Conn is a single WebSocket client. A client optionally binds to one
// session topic to receive conversation updates for it; board-level
// events go to every client.
type Conn struct {
	ID      string
	Topic   string
	Sock    *websocket.Conn
	Send    chan []byte
	writeMu sync.Mutex
}

func (c *Conn) WriteMessage(messageType int, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Sock.WriteMessage(messageType, data)
}

// Hub tracks connected WebSocket clients and fans events out to them.
type Hub struct {
	mu     sync.RWMutex
	conns  map[string]*Conn
	topics map[string]map[string]bool

	events chan event
}

type event struct {
	topic string // empty means every client
	data  []byte
}

func NewHub() *Hub {
	return &Hub{
		conns:  make(map[string]*Conn),
		topics: make(map[string]map[string]bool),
		events: make(chan event, 256),
	}
}

// Run fans queued events out to clients until the process exits.
// Call it once, in its own goroutine.
func (h *Hub) Run() {
	for ev := range h.events {
		h.mu.RLock()
		for _, conn := range h.conns {
			if ev.topic != "" && conn.Topic != ev.topic {
				continue
			}
			select {
			case conn.Send <- ev.data:
			default:
				log.Printf("WARN ws connection %s send buffer full, dropping", conn.ID)
				go h.Unregister(conn)
			}
		}
		h.mu.RUnlock()
	}
}

func (h *Hub) NewConn(ws *websocket.Conn) *Conn {
	return &Conn{
		ID:   uuid.NewString(),
		Sock: ws,
		Send: make(chan []byte, 256),
	}
}

// Register adds a connection to the hub.
func (h *Hub) Register(conn *Conn) {
	h.mu.Lock()
	h.conns[conn.ID] = conn
	h.mu.Unlock()
}

// Unregister removes a connection and closes its send channel. The
// removal is synchronous: once it returns, the connection no longer
// counts as a subscriber of any topic, so callers can safely decide
// whether a topic's watcher should stop.
func (h *Hub) Unregister(conn *Conn) {
	h.mu.Lock()
	if _, ok := h.conns[conn.ID]; ok {
		delete(h.conns, conn.ID)
		h.dropFromTopic(conn)
		close(conn.Send)
	}
	h.mu.Unlock()
}

// Subscribe moves a connection onto a session topic, leaving any
// previous one.
func (h *Hub) Subscribe(conn *Conn, topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.dropFromTopic(conn)
	conn.Topic = topic
	if topic == "" {
		return
	}
	if h.topics[topic] == nil {
		h.topics[topic] = make(map[string]bool)
	}
	h.topics[topic][conn.ID] = true
}

// dropFromTopic must be called with h.mu held.
func (h *Hub) dropFromTopic(conn *Conn) {
	if conn.Topic == "" {
		return
	}
	if set := h.topics[conn.Topic]; set != nil {
		delete(set, conn.ID)
		if len(set) == 0 {
			delete(h.topics, conn.Topic)
		}
	}
}

// BroadcastJSON sends v to every client on topic, or to all clients
// when topic is empty.
func (h *Hub) BroadcastJSON(topic string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	h.events <- event{topic: topic, data: data}
	return nil
}

// Subscribers reports how many clients are bound to topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topic])
}

func (h *Hub) ConnCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}
