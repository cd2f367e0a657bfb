package http

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ecokids/ecokids-hub/internal/domain/shared"
	"github.com/ecokids/ecokids-hub/pkg/logger"
)

// ══════════════════════════════════════════════════════════════════════════════
// WEBSOCKET NOTIFICATION FEED
// Pushes domain events to connected browsers so the game UI can show
// level-ups and achievement toasts without polling. Read-only: clients
// never send game input over the socket.
// ══════════════════════════════════════════════════════════════════════════════

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	sendBufferSize = 32
)

// feedMessage is the wire format pushed to clients.
type feedMessage struct {
	Type      string                 `json:"type"`
	PlayerKey string                 `json:"player_key,omitempty"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp"`
}

// feedClient is one connected browser.
type feedClient struct {
	conn *websocket.Conn
	send chan feedMessage

	// playerKey filters the feed to one player. Empty receives everything.
	playerKey string
}

// NotificationHub fans domain events out to websocket clients.
type NotificationHub struct {
	upgrader websocket.Upgrader
	logger   *logger.Logger

	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	closed  bool
}

// NewNotificationHub creates a notification hub.
func NewNotificationHub(log *logger.Logger) *NotificationHub {
	if log == nil {
		log = logger.Default()
	}
	return &NotificationHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The REST layer already allows any origin; the feed carries
			// no secrets, only game state the player owns.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger:  log,
		clients: make(map[*feedClient]struct{}),
	}
}

// EventHandler returns a bus subscriber that forwards events to the feed.
func (h *NotificationHub) EventHandler() shared.EventHandler {
	return func(event shared.Event) error {
		h.Broadcast(event)
		return nil
	}
}

// Broadcast pushes one event to every matching client. Slow clients are
// dropped rather than allowed to stall the bus.
func (h *NotificationHub) Broadcast(event shared.Event) {
	payload := event.Payload()
	playerKey, _ := payload["player_key"].(string)

	msg := feedMessage{
		Type:      string(event.EventType()),
		PlayerKey: playerKey,
		Payload:   payload,
		Timestamp: event.OccurredAt(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		if c.playerKey != "" && c.playerKey != playerKey {
			continue
		}
		select {
		case c.send <- msg:
		default:
			// Buffer full, client is not keeping up. Drop the message;
			// the ping timeout will disconnect it eventually.
			h.logger.Warn("notification feed client lagging, dropping message",
				logger.String("event_type", msg.Type))
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *NotificationHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects all clients.
func (h *NotificationHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// HandleWS handles GET /ws/notifications. An optional player_key query
// parameter narrows the feed to one player's events.
func (h *NotificationHub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", logger.Err(err))
		return
	}

	client := &feedClient{
		conn:      conn,
		send:      make(chan feedMessage, sendBufferSize),
		playerKey: r.URL.Query().Get("player_key"),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		_ = conn.Close()
		return
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	h.logger.Debug("notification feed client connected",
		logger.String("player_key", client.playerKey),
		logger.String("remote", conn.RemoteAddr().String()))

	go h.writePump(client)
	go h.readPump(client)
}

// readPump discards inbound frames and watches for disconnect.
func (h *NotificationHub) readPump(c *feedClient) {
	defer h.removeClient(c)

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writePump serializes outbound messages and keeps the connection alive.
func (h *NotificationHub) writePump(c *feedClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// removeClient unregisters and closes one client.
func (h *NotificationHub) removeClient(c *feedClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	_ = c.conn.Close()
}
