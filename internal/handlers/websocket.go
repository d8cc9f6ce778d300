package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/satonic/satonic-storefront/internal/models"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 512
)

// WebSocketMessage represents a message sent over WebSocket
type WebSocketMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Client represents a WebSocket connection of one creation session
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID string
}

// Hub delivers session notifications to the connected clients of that
// session
type Hub struct {
	// Clients by session id
	sessions map[string]map[*Client]bool

	// Notifications to deliver
	notify chan models.Notification

	// Register requests from the clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed once Run has returned
	done chan struct{}

	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHub creates a new hub. An empty origin list accepts every origin.
func NewHub(allowedOrigins []string, logger zerolog.Logger) *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]bool),
		notify:     make(chan models.Notification, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger.With().Str("component", "websocket_hub").Logger(),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return len(allowed) == 0
	}
}

// Notify queues a notification for the clients of its session. It never
// blocks; notifications are dropped when the queue is full.
func (h *Hub) Notify(n models.Notification) {
	select {
	case h.notify <- n:
	default:
		h.logger.Warn().Str("session_id", n.SessionID).Msg("notification queue full, dropping")
	}
}

// Run starts the hub and stops it when ctx is done
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for client := range clients {
					close(client.send)
				}
			}
			h.sessions = make(map[string]map[*Client]bool)
			return
		case client := <-h.register:
			if _, ok := h.sessions[client.sessionID]; !ok {
				h.sessions[client.sessionID] = make(map[*Client]bool)
			}
			h.sessions[client.sessionID][client] = true
		case client := <-h.unregister:
			h.remove(client)
		case n := <-h.notify:
			message, err := json.Marshal(n)
			if err != nil {
				h.logger.Error().Err(err).Msg("failed to encode notification")
				continue
			}
			h.sendToSession(n.SessionID, wrap("notification", message))
		}
	}
}

// join registers a client. It reports false once the hub has stopped.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

// leave unregisters a client; it returns at once when the hub has stopped
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) remove(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}
}

// sendToSession sends a message to every client of a session. Clients
// that cannot keep up are dropped.
func (h *Hub) sendToSession(sessionID string, message []byte) {
	for client := range h.sessions[sessionID] {
		select {
		case client.send <- message:
		default:
			h.remove(client)
		}
	}
}

func wrap(kind string, payload []byte) []byte {
	message, _ := json.Marshal(WebSocketMessage{Type: kind, Payload: payload})
	return message
}

// readPump drains the connection until it closes. Incoming messages are
// ignored; the stream is one way.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug().Err(err).Str("session_id", c.sessionID).Msg("websocket closed")
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs upgrades a session request to a notification stream
func ServeWs(hub *Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := mustSession(r)

		conn, err := hub.upgrader.Upgrade(w, r, nil)
		if err != nil {
			hub.logger.Debug().Err(err).Msg("websocket upgrade failed")
			return
		}

		client := &Client{
			hub:       hub,
			conn:      conn,
			send:      make(chan []byte, 16),
			sessionID: session.ID(),
		}
		client.send <- wrap("welcome", json.RawMessage(`{"message":"Connected to session notifications"}`))
		if !hub.join(client) {
			conn.Close()
			return
		}

		go client.writePump()
		go client.readPump()
	}
}
