package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/codeladder/dashboard/internal/domain"
	"github.com/codeladder/dashboard/internal/service"
)

const (
	// AuthorizationHeader is the header key for the session token
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for the session token
	BearerPrefix = "Bearer "
	// SessionKey is the context key for the resolved session
	SessionKey = "session"
)

// AuthMiddleware validates the access token and resolves it into an explicit
// Session (username plus upstream ledger token) for downstream handlers.
func AuthMiddleware(sessionService *service.SessionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrNotAuthenticated.Error(),
			})
			c.Abort()
			return
		}

		if !strings.HasPrefix(authHeader, BearerPrefix) {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrUnauthorized.Error(),
			})
			c.Abort()
			return
		}

		token := strings.TrimPrefix(authHeader, BearerPrefix)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrUnauthorized.Error(),
			})
			c.Abort()
			return
		}

		session, err := sessionService.ResolveAccessToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": domain.ErrInvalidToken.Error(),
			})
			c.Abort()
			return
		}

		c.Set(SessionKey, session)
		c.Next()
	}
}

// GetSession extracts the session from the gin context
func GetSession(c *gin.Context) (domain.Session, bool) {
	value, exists := c.Get(SessionKey)
	if !exists {
		return domain.Session{}, false
	}
	session, ok := value.(domain.Session)
	return session, ok
}

// RequireSession ensures a session is present and returns it.
// If not authenticated, it aborts the request
func RequireSession(c *gin.Context) (domain.Session, bool) {
	session, ok := GetSession(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{
			"error": domain.ErrNotAuthenticated.Error(),
		})
		c.Abort()
		return domain.Session{}, false
	}
	return session, true
}
