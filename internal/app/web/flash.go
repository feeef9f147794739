package web

import (
	"encoding/base64"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alunos/internal/app/dashboard"
)

const flashCookieName = "alunos_flash"

type flash struct {
	Title       string `json:"t"`
	Description string `json:"d"`
	Destructive bool   `json:"x,omitempty"`
}

// setFlash carries a notification across a redirect
func (h *Handler) setFlash(c *gin.Context, n dashboard.Notification) {
	data, err := json.Marshal(flash{Title: n.Title, Description: n.Description, Destructive: n.Destructive()})
	if err != nil {
		return
	}
	c.SetCookie(flashCookieName, base64.RawURLEncoding.EncodeToString(data), 60, "/", "", h.cookieSecure, true)
}

// takeFlash reads and clears the flash cookie
func (h *Handler) takeFlash(c *gin.Context) *dashboard.Notification {
	raw, err := c.Cookie(flashCookieName)
	if err != nil || raw == "" {
		return nil
	}
	c.SetCookie(flashCookieName, "", -1, "/", "", h.cookieSecure, true)

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return nil
	}
	var f flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil
	}
	n := dashboard.Notification{Title: f.Title, Description: f.Description}
	if f.Destructive {
		n.Variant = dashboard.VariantDestructive
	}
	return &n
}
