package web

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alunos/internal/app/services"
	"github.com/yigit/alunos/internal/middleware"
)

const probeTimeout = 5 * time.Second

// ResolveSession returns the session id set by the session cookie middleware
func ResolveSession(c *gin.Context) (string, bool) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return "", false
	}
	return session.ID, true
}

// SessionProbe re-checks the connection's session token on every websocket
// ping so that an expiry is noticed while the page stays open.
func SessionProbe(authService services.AuthService) func(c *gin.Context) func() {
	return func(c *gin.Context) func() {
		token, err := c.Cookie(middleware.SessionCookieName)
		if err != nil || token == "" {
			return nil
		}
		return func() {
			ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
			defer cancel()
			_, _ = authService.CurrentSession(ctx, token)
		}
	}
}
