package web

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/emiliopalmerini/agentdeck/internal/board"
	"github.com/emiliopalmerini/agentdeck/internal/querycache"
)

const (
	wsReadTimeout  = 60 * time.Second
	wsWriteTimeout = 10 * time.Second
	wsPingInterval = 30 * time.Second
	wsReadLimit    = 4096
)

// wsServer upgrades browser connections and keeps them fed with cache
// refresh events and toasts. Subscribing to a session starts a
// conversation poller for it; the poller stops when the last
// subscriber leaves.
type wsServer struct {
	hub   *Hub
	board *board.Board

	upgrader websocket.Upgrader

	mu       sync.Mutex
	watchers map[string]context.CancelFunc
}

func newWSServer(h *Hub, b *board.Board) *wsServer {
	s := &wsServer{
		hub:      h,
		board:    b,
		watchers: make(map[string]context.CancelFunc),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Single-user local tool, same-origin enforcement is
				// left to the reverse proxy if one is deployed.
				return true
			},
		},
	}

	// Cache invalidations reach every client; the browser decides
	// which views to refetch from the key.
	b.Cache().Watch(func(key querycache.Key) {
		_ = h.BroadcastJSON("", wsEvent{Type: "refresh", Key: key.String()})
	})

	return s
}

type wsEvent struct {
	Type string `json:"type"`
	Key  string `json:"key,omitempty"`
}

type wsClientMessage struct {
	Type      string `json:"type"`
	SessionID string `json:"session_id"`
}

func (s *wsServer) handleWS(c echo.Context) error {
	ws, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("WARN websocket upgrade failed: %v", err)
		return err
	}

	conn := s.hub.NewConn(ws)
	s.hub.Register(conn)
	ws.SetReadLimit(wsReadLimit)

	go s.writePump(conn)
	go s.readPump(conn)

	return nil
}

func (s *wsServer) readPump(conn *Conn) {
	defer func() {
		topic := conn.Topic
		s.hub.Unregister(conn)
		conn.Sock.Close()
		s.maybeStopWatcher(topic)
	}()

	_ = conn.Sock.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.Sock.SetPongHandler(func(string) error {
		return conn.Sock.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	for {
		_, data, err := conn.Sock.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARN websocket read: %v", err)
			}
			return
		}

		var msg wsClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "subscribe":
			prev := conn.Topic
			s.hub.Subscribe(conn, msg.SessionID)
			s.maybeStopWatcher(prev)
			s.ensureWatcher(msg.SessionID)
		case "unsubscribe":
			prev := conn.Topic
			s.hub.Subscribe(conn, "")
			s.maybeStopWatcher(prev)
		}
	}
}

func (s *wsServer) writePump(conn *Conn) {
	ticker := time.NewTicker(wsPingInterval)
	defer func() {
		ticker.Stop()
		conn.Sock.Close()
	}()

	for {
		select {
		case data, ok := <-conn.Send:
			_ = conn.Sock.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.Sock.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *wsServer) ensureWatcher(sessionID string) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.watchers[sessionID]; running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.watchers[sessionID] = cancel
	go s.board.WatchConversation(ctx, sessionID)
}

func (s *wsServer) maybeStopWatcher(sessionID string) {
	if sessionID == "" {
		return
	}
	if s.hub.Subscribers(sessionID) > 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.watchers[sessionID]; ok {
		cancel()
		delete(s.watchers, sessionID)
	}
}

// hubNotifier forwards board notifications to every connected client.
type hubNotifier struct {
	hub *Hub
}

func NewHubNotifier(h *Hub) board.Notifier {
	return &hubNotifier{hub: h}
}

func (n *hubNotifier) Notify(note board.Notification) {
	_ = n.hub.BroadcastJSON("", struct {
		Type string             `json:"type"`
		Note board.Notification `json:"notification"`
	}{Type: "notification", Note: note})
}
