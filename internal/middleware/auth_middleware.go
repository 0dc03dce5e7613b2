package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/mventory-backend/internal/app/model"
	"github.com/ikkim/mventory-backend/internal/app/service"
	"github.com/ikkim/mventory-backend/internal/errors"
)

// SessionCookieName is the cookie carrying the session token
const SessionCookieName = "token"

// Context keys for user information
const (
	UserIDKey = "user_id"
	UserKey   = "user"
)

// SessionValidator resolves a session token to its user
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	sessions SessionValidator
}

func NewAuthMiddleware(sessions SessionValidator) *AuthMiddleware {
	return &AuthMiddleware{
		sessions: sessions,
	}
}

// TokenFromRequest reads the session token from the cookie, falling back to an
// "Authorization: Bearer" header. It returns "" when neither is present.
func TokenFromRequest(c *gin.Context) string {
	if token, err := c.Cookie(SessionCookieName); err == nil && token != "" {
		return token
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Protect rejects the request with 401 unless it carries a valid session for an
// existing user. On success the user is stored in the context.
func (m *AuthMiddleware) Protect() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token := TokenFromRequest(c)
		if token == "" {
			log.Warn("Missing session token", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "Not authorized, please log in")
			return
		}

		user, err := m.sessions.ValidateSession(c.Request.Context(), token)
		if err != nil {
			switch {
			case stderrors.Is(err, service.ErrSessionExpired):
				log.Warn("Session expired", map[string]interface{}{"path": c.Request.URL.Path})
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Session expired, please log in")
			case stderrors.Is(err, service.ErrSessionRevoked):
				log.Warn("Session revoked", map[string]interface{}{"path": c.Request.URL.Path})
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Session ended, please log in")
			case stderrors.Is(err, service.ErrInvalidSession):
				log.Warn("Invalid session token", map[string]interface{}{"path": c.Request.URL.Path})
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "Not authorized, please log in")
			default:
				// store or denylist failure: the session cannot be checked
				log.Error("Session validation failed", err, map[string]interface{}{
					"path": c.Request.URL.Path,
				})
				errors.AbortWithError(c, http.StatusInternalServerError, errors.InternalServerError, "Could not verify session, please try again")
			}
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserKey, user)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": user.ID,
		})

		c.Next()
	}
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := userID.(uint)
	return id, ok
}

// GetUser extracts the authenticated user from context
func GetUser(c *gin.Context) (*model.User, bool) {
	user, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	u, ok := user.(*model.User)
	return u, ok
}
