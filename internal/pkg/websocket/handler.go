package websocket

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// SessionResolver returns the session of an authenticated request
type SessionResolver func(c *gin.Context) (sessionID string, ok bool)

// Handler for WebSocket connections
type Handler struct {
	hub      *Hub
	resolve  SessionResolver
	onPing   func(c *gin.Context) func()
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// NewHandler creates a new WebSocket handler. Same-origin requests are always
// accepted; allowedOrigins adds cross-origin pages.
func NewHandler(hub *Hub, resolve SessionResolver, allowedOrigins []string, logger zerolog.Logger) *Handler {
	return &Handler{
		hub:     hub,
		resolve: resolve,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

// WithPing sets a per-connection hook that runs before every ping
func (h *Handler) WithPing(onPing func(c *gin.Context) func()) *Handler {
	h.onPing = onPing
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return nil
	}
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set[origin] {
			return true
		}
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

// HandleConnection upgrades the request and subscribes it to its session's messages
// @Summary Session events
// @Description Upgrades to a WebSocket that receives session_ended when the session ends
// @Tags dashboard, websocket
// @Success 101 {string} string "Switching Protocols to WebSocket"
// @Failure 401 {object} gin.H "No active session"
// @Router /dashboard/events [get]
func (h *Handler) HandleConnection(c *gin.Context) {
	sessionID, ok := h.resolve(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "No active session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error().Err(err).Str("sessionID", sessionID).Msg("Failed to upgrade connection to WebSocket")
		return
	}

	client := &Client{
		hub:       h.hub,
		conn:      conn,
		send:      make(chan []byte, 16),
		sessionID: sessionID,
		addr:      conn.RemoteAddr().String(),
		logger:    h.logger,
	}
	if h.onPing != nil {
		client.onPing = h.onPing(c.Copy())
	}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}
