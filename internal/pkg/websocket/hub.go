package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Message types pushed to dashboard pages
const (
	MessageSessionEnded = "session_ended"
)

// Message represents a message sent over WebSocket
type Message struct {
	// Type of message, e.g. "session_ended"
	Type string `json:"type"`

	// Session this message is addressed to
	SessionID string `json:"-"`

	// Page the browser should open next
	Path string `json:"path,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}

// Hub maintains the set of active clients and delivers messages to a session's clients
type Hub struct {
	// Registered clients organized by session ID
	clients map[string]map[*Client]bool

	deliver    chan *Message
	register   chan *Client
	unregister chan *Client

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	logger zerolog.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		deliver:    make(chan *Message, 64),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string]map[*Client]bool),
		logger:     logger,
	}
}

// Run handles client registrations and deliveries until ctx is done
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.deliver:
			h.deliverMessage(message)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.sessionID]; !ok {
		h.clients[client.sessionID] = make(map[*Client]bool)
	}
	h.clients[client.sessionID][client] = true

	h.logger.Debug().
		Str("sessionID", client.sessionID).
		Str("addr", client.addr).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked must be called with h.mu held
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.clients[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.sessionID)
	}

	h.logger.Debug().
		Str("sessionID", client.sessionID).
		Str("addr", client.addr).
		Msg("Client unregistered")
}

func (h *Hub) deliverMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error().Err(err).Str("sessionID", message.SessionID).Msg("Failed to marshal message")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[message.SessionID]
	if !ok {
		h.logger.Debug().Str("sessionID", message.SessionID).Msg("No clients for session")
		return
	}

	for client := range clients {
		select {
		case client.send <- data:
		default:
			// Slow client; drop it
			h.removeLocked(client)
		}
	}

	h.logger.Debug().
		Str("sessionID", message.SessionID).
		Str("type", message.Type).
		Int("clientCount", len(clients)).
		Msg("Message delivered to session")
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.removeLocked(client)
		}
	}
}

// SendToSession queues a message for every client of its session
func (h *Hub) SendToSession(message *Message) {
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}
	select {
	case h.deliver <- message:
	default:
		h.logger.Warn().Str("sessionID", message.SessionID).Msg("Hub delivery queue full, message dropped")
	}
}

// SessionEnded tells a session's pages to navigate to path
func (h *Hub) SessionEnded(sessionID, path string) {
	h.SendToSession(&Message{Type: MessageSessionEnded, SessionID: sessionID, Path: path})
}

// ClientsCount returns the number of connected clients for a session
func (h *Hub) ClientsCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}
