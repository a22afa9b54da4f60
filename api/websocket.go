package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/seenimoa/mortgagecli/internal/analysis/mortgage"
	"github.com/seenimoa/mortgagecli/internal/output"
	"github.com/seenimoa/mortgagecli/internal/profile"
)

// Event types pushed to WebSocket clients.
const (
	EventAnalysisComplete = "analysis_complete"
	EventMatrixComplete   = "matrix_complete"
	EventProfileCreated   = "profile_created"
	EventProfileDeleted   = "profile_deleted"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 4096
)

// WSMessage is a message exchanged over the WebSocket connection.
type WSMessage struct {
	Type string          `json:"type"`
	Data interface{}     `json:"data,omitempty"`
	Raw  json.RawMessage `json:"-"`
}

// UnmarshalJSON keeps the raw data so requests can be decoded per type.
func (m *WSMessage) UnmarshalJSON(b []byte) error {
	var in struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	m.Type, m.Raw, m.Data = in.Type, in.Data, nil
	return nil
}

// WSHub fans out events to every connected client.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
	quit       chan struct{}
	stopOnce   sync.Once
	log        logrus.FieldLogger
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	ID   string
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub(log logrus.FieldLogger) *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
		quit:       make(chan struct{}),
		log:        log,
	}
}

// NewWSClient creates a client with a fresh id.
func NewWSClient(hub *WSHub) *WSClient {
	return &WSClient{
		ID:   uuid.NewString(),
		hub:  hub,
		send: make(chan WSMessage, 256),
	}
}

// Run starts the hub event loop. It returns after Stop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.log.WithField("client", client.ID).Debug("websocket client connected")
		case client := <-h.unregister:
			h.mu.Lock()
			h.remove(client)
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					h.log.WithField("client", client.ID).Warn("websocket client too slow, disconnecting")
					h.remove(client)
				}
			}
			h.mu.Unlock()
		case <-h.quit:
			h.mu.Lock()
			for client := range h.clients {
				h.remove(client)
			}
			h.mu.Unlock()
			return
		}
	}
}

// remove must be called with mu held.
func (h *WSHub) remove(client *WSClient) {
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		h.log.WithField("client", client.ID).Debug("websocket client disconnected")
	}
}

// Stop ends Run and disconnects every client.
func (h *WSHub) Stop() {
	h.stopOnce.Do(func() { close(h.quit) })
}

// Broadcast sends a message to all connected WebSocket clients.
// Messages are dropped when the queue is full.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		h.log.WithField("type", msg.Type).Warn("websocket broadcast queue full, dropping event")
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	select {
	case h.register <- client:
	case <-h.quit:
	}
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// handleWebSocket upgrades HTTP connections to WebSocket. Clients receive
// every broadcast event and may send ping, subscribe and analyze requests.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := NewWSClient(s.wsHub)
	s.wsHub.Register(client)

	go wsWritePump(conn, client)
	go wsReadPump(conn, client, s)
}

// wsReadPump pumps messages from the WebSocket connection to the hub.
func wsReadPump(conn *websocket.Conn, client *WSClient, s *Server) {
	defer func() {
		client.hub.Unregister(client)
		conn.Close()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.WithError(err).WithField("client", client.ID).Warn("websocket read error")
			}
			break
		}

		var msg WSMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}

		if reply, ok := s.wsReply(client, msg); ok {
			client.trySend(reply)
		}
	}
}

// trySend queues a direct reply unless the client is already gone.
func (c *WSClient) trySend(msg WSMessage) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if !c.hub.clients[c] {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// wsReply answers a client request. The second result is false for unknown types.
func (s *Server) wsReply(client *WSClient, msg WSMessage) (WSMessage, bool) {
	switch msg.Type {
	case "ping":
		return WSMessage{Type: "pong"}, true
	case "subscribe":
		return WSMessage{Type: "subscribed", Data: map[string]string{"client": client.ID}}, true
	case "analyze":
		if err := s.throttle(); err != nil {
			return WSMessage{Type: "error", Data: "rate limit exceeded"}, true
		}
		var req AnalyzeRequest
		if err := json.Unmarshal(msg.Raw, &req); err != nil {
			return WSMessage{Type: "error", Data: "invalid analyze request"}, true
		}
		if err := profile.ValidateProperty(req.PropertyInput); err != nil {
			return WSMessage{Type: "error", Data: err.Error()}, true
		}
		p, err := s.loadProfile(req.Profile)
		if err != nil {
			return WSMessage{Type: "error", Data: err.Error()}, true
		}
		res := mortgage.Analyze(req.PropertyInput, p)
		return WSMessage{Type: "analysis", Data: output.NewAnalysisDoc(res, p)}, true
	}
	return WSMessage{}, false
}

// throttle holds a WebSocket request until the shared limiter has a token.
// Upgraded connections bypass the HTTP middleware, so requests are metered here.
func (s *Server) throttle() error {
	if s.limiter == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeWait)
	defer cancel()
	return s.limiter.Wait(ctx)
}

// wsWritePump pumps messages from the hub to the WebSocket connection.
func wsWritePump(conn *websocket.Conn, client *WSClient) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
