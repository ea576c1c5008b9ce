package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"timebank/internal/middleware"
	"timebank/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	// Max connections per user
	maxConnsPerUser = 12
	// Max total connections
	maxTotalConns = 10000
)

var (
	ErrServerFull = errors.New("server connection limit reached")
	ErrUserFull   = errors.New("user connection limit reached")
)

// wireMessage is the frame written to browsers.
type wireMessage struct {
	Type       string `json:"type"`
	Collection string `json:"collection"`
	DocID      uint   `json:"doc_id,omitempty"`
	Payload    any    `json:"payload,omitempty"`
}

// Hub maps userID -> connected Clients and subscribes each client to the
// broker: events visible to the user plus the user's city room.
type Hub struct {
	broker *Broker

	mu         sync.RWMutex
	conns      map[uint]map[*Client]struct{}
	totalConns int
}

// NewHub creates a hub fed by broker.
func NewHub(broker *Broker) *Hub {
	return &Hub{
		broker: broker,
		conns:  make(map[uint]map[*Client]struct{}),
	}
}

// Register a connection for userID in city. Returns the Client or an error if limits are exceeded.
func (h *Hub) Register(userID uint, city string, conn *websocket.Conn) (*Client, error) {
	h.mu.Lock()
	if h.totalConns >= maxTotalConns {
		h.mu.Unlock()
		return nil, ErrServerFull
	}
	m, ok := h.conns[userID]
	if !ok {
		m = make(map[*Client]struct{})
		h.conns[userID] = m
	}
	if len(m) >= maxConnsPerUser {
		h.mu.Unlock()
		return nil, ErrUserFull
	}

	client := newClient(h, conn, userID, strings.ToLower(strings.TrimSpace(city)))
	m[client] = struct{}{}
	h.totalConns++
	h.mu.Unlock()

	observability.WebSocketConnections.Inc()

	deliver := func(e Event) {
		if client.seen(e.ID) {
			return
		}
		b, err := json.Marshal(wireMessage{Type: e.Kind, Collection: e.Collection, DocID: e.DocID, Payload: e.Payload})
		if err != nil {
			middleware.Logger.Error("marshal websocket event", "kind", e.Kind, "error", err)
			return
		}
		client.TrySend(b)
	}

	cancels := []func(){h.broker.Subscribe(Filter{User(userID)}, deliver)}
	if client.City != "" {
		cancels = append(cancels, h.broker.Subscribe(Filter{
			In("collection", CollectionCommunity, CollectionTasks),
			In("kind", KindCommunityMessage, KindTaskCreated),
			Eq("city", client.City),
		}, deliver))
	}
	client.mu.Lock()
	client.cancels = cancels
	client.mu.Unlock()

	return client, nil
}

// Unregister removes client and cancels its subscriptions. Safe to call twice.
func (h *Hub) Unregister(client *Client) {
	client.unsubscribe()

	h.mu.Lock()
	removed := false
	if m, ok := h.conns[client.UserID]; ok {
		if _, exists := m[client]; exists {
			delete(m, client)
			h.totalConns--
			removed = true
		}
		if len(m) == 0 {
			delete(h.conns, client.UserID)
		}
	}
	h.mu.Unlock()

	if removed {
		observability.WebSocketConnections.Dec()
	}
}

// IsOnline reports whether a user has at least one connection on this instance.
func (h *Hub) IsOnline(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[userID]) > 0
}

// ConnectionCount returns the number of registered clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.totalConns
}

// Shutdown gracefully closes all websocket connections.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	clients := make([]*Client, 0, h.totalConns)
	for _, userConns := range h.conns {
		for client := range userConns {
			clients = append(clients, client)
		}
	}
	h.conns = make(map[uint]map[*Client]struct{})
	h.totalConns = 0
	h.mu.Unlock()

	for _, client := range clients {
		client.unsubscribe()
		observability.WebSocketConnections.Dec()
		if client.Conn == nil {
			continue
		}
		if err := client.Conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "Server shutting down")); err != nil {
			middleware.Logger.Warn("failed to write close message", "user_id", client.UserID, "error", err)
		}
		if err := client.Conn.Close(); err != nil {
			middleware.Logger.Warn("failed to close websocket", "user_id", client.UserID, "error", err)
		}
	}
	return nil
}
