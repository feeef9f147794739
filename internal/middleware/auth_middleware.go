package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yigit/alunos/internal/app/models"
	"github.com/yigit/alunos/internal/app/models/dto"
	"github.com/yigit/alunos/internal/app/services"
	"github.com/yigit/alunos/internal/pkg/apperrors"
	"github.com/yigit/alunos/internal/pkg/auth"
)

// Context keys set by the authentication middlewares
const (
	ContextSessionKey   = "session"
	ContextAccountIDKey = "accountID"
	ContextEmailKey     = "email"
)

// SessionCookieName holds the access token for the browser UI
const SessionCookieName = "alunos_session"

// AuthMiddleware for authentication
type AuthMiddleware struct {
	authService services.AuthService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(authService services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authService: authService}
}

// JWTAuth middleware for bearer token validation
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.Trim(c.GetHeader("Authorization"), "\"'")
		if authHeader == "" {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		tokenString, err := auth.ExtractBearerToken(authHeader)
		if err != nil {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Invalid token format")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		session, err := m.authService.CurrentSession(c.Request.Context(), tokenString)
		if err != nil {
			errorCode := dto.ErrorCodeInvalidToken
			errorDetails := "Invalid token"
			switch {
			case errors.Is(err, apperrors.ErrTokenExpired):
				errorCode = dto.ErrorCodeExpiredToken
				errorDetails = "Token has expired"
			case errors.Is(err, apperrors.ErrTokenRevoked):
				errorDetails = "Session has ended"
			}

			errorDetail := dto.NewErrorDetail(errorCode, "Authentication failed").WithDetails(errorDetails)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(errorDetail))
			return
		}

		setSession(c, session)
		c.Next()
	}
}

// SessionCookieAuth resolves the session cookie for browser pages and
// redirects to loginPath when there is no active session. secure marks the
// cleared cookie the same way the sign-in cookie was written.
func (m *AuthMiddleware) SessionCookieAuth(loginPath string, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}

		session, err := m.authService.CurrentSession(c.Request.Context(), token)
		if err != nil {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookieName, "", -1, "/", "", secure, true)
			c.Redirect(http.StatusSeeOther, loginPath)
			c.Abort()
			return
		}

		setSession(c, session)
		c.Next()
	}
}

func setSession(c *gin.Context, session *models.Session) {
	c.Set(ContextSessionKey, session)
	c.Set(ContextAccountIDKey, session.AccountID)
	c.Set(ContextEmailKey, session.Email)
}

// CurrentSession returns the session stored by an authentication middleware
func CurrentSession(c *gin.Context) (*models.Session, bool) {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := value.(*models.Session)
	return session, ok
}
