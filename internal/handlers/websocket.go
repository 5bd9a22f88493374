package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/atlasdash/internal/interfaces"
	"github.com/ternarybob/atlasdash/internal/models"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// wsEvent is the envelope pushed to connected dashboard clients.
type wsEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// WebSocketHandler pushes notification and auth events to connected
// dashboard clients so the UI updates without polling.
type WebSocketHandler struct {
	mu          sync.RWMutex
	clients     map[*websocket.Conn]*sync.Mutex
	notifier    interfaces.NotificationService
	credentials interfaces.CredentialService
	feed        chan models.Notification
	done        chan struct{}
	logger      arbor.ILogger
}

// NewWebSocketHandler creates the handler and starts forwarding
// notification pushes to connected clients.
func NewWebSocketHandler(notifier interfaces.NotificationService, credentials interfaces.CredentialService, logger arbor.ILogger) *WebSocketHandler {
	h := &WebSocketHandler{
		clients:     make(map[*websocket.Conn]*sync.Mutex),
		notifier:    notifier,
		credentials: credentials,
		feed:        notifier.Subscribe(),
		done:        make(chan struct{}),
		logger:      logger,
	}

	go h.forward()
	return h
}

// credentialSnapshot returns the current per-service credentials in
// display order.
func (h *WebSocketHandler) credentialSnapshot() []models.Credential {
	result := make([]models.Credential, 0, len(models.KnownServices()))
	for _, service := range models.KnownServices() {
		result = append(result, h.credentials.Credential(service))
	}
	return result
}

func (h *WebSocketHandler) forward() {
	for {
		select {
		case n, ok := <-h.feed:
			if !ok {
				return
			}
			h.Broadcast("notification", n)
			// Auth transitions surface as notifications; send the fresh
			// credential snapshot with each one.
			h.Broadcast("auth", h.credentialSnapshot())
		case <-h.done:
			return
		}
	}
}

// HandleWebSocket handles GET /ws upgrade requests.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	connMu := &sync.Mutex{}
	h.clients[conn] = connMu
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client connected")

	// Seed the new client with the current auth state
	connMu.Lock()
	if err := conn.WriteJSON(wsEvent{Type: "auth", Payload: h.credentialSnapshot()}); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to send initial auth snapshot")
	}
	connMu.Unlock()

	// Read loop exists only to detect disconnects; clients do not send.
	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends an event to every connected client. Failed writes drop
// the client.
func (h *WebSocketHandler) Broadcast(eventType string, payload interface{}) {
	event := wsEvent{Type: eventType, Payload: payload}

	h.mu.RLock()
	conns := make(map[*websocket.Conn]*sync.Mutex, len(h.clients))
	for conn, mu := range h.clients {
		conns[conn] = mu
	}
	h.mu.RUnlock()

	for conn, mu := range conns {
		mu.Lock()
		err := conn.WriteJSON(event)
		mu.Unlock()
		if err != nil {
			h.removeClient(conn)
		}
	}
}

func (h *WebSocketHandler) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.Debug().Int("clients", count).Msg("WebSocket client disconnected")
}

// Close stops the forwarder and disconnects all clients.
func (h *WebSocketHandler) Close() {
	close(h.done)
	h.notifier.Unsubscribe(h.feed)

	h.mu.Lock()
	defer h.mu.Unlock()
	for conn := range h.clients {
		conn.Close()
	}
	h.clients = make(map[*websocket.Conn]*sync.Mutex)
}
