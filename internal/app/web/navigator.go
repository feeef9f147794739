package web

import (
	"github.com/yigit/alunos/internal/pkg/websocket"
)

// HubNavigator pushes dashboard navigation to the session's open pages
type HubNavigator struct {
	hub *websocket.Hub
}

// NewHubNavigator creates a HubNavigator
func NewHubNavigator(hub *websocket.Hub) *HubNavigator {
	return &HubNavigator{hub: hub}
}

// Navigate implements dashboard.Navigator
func (n *HubNavigator) Navigate(sessionID, path string) {
	n.hub.SessionEnded(sessionID, path)
}
