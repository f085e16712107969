package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "session_token"

const identityKey = "identity"

// SessionValidator resolves a session token to an identity.
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (*auth.Identity, error)
}

// TokenFromRequest reads the session token from the cookie, then from an
// "Authorization: Bearer" header.
func TokenFromRequest(c *gin.Context) string {
	if cookie, err := c.Cookie(SessionCookie); err == nil && cookie != "" {
		return cookie
	}

	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2) // 0 is Bearer, 1 is token
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// Session resolves the caller once per request. Requests without a valid
// session continue as anonymous; route guards decide whether that is enough.
func Session(sessions SessionValidator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := TokenFromRequest(c)
		if token == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		identity, err := sessions.ValidateSession(ctx, token)
		if err != nil {
			if !errors.Is(err, service.ErrUnauthorized) {
				logger.ErrorContext(ctx, "session_lookup_failed", "error", err)
			}
			c.Next()
			return
		}

		c.Set(identityKey, identity)
		c.Request = c.Request.WithContext(auth.WithIdentity(ctx, identity))
		c.Next()
	}
}

// CurrentIdentity returns the caller resolved by Session, or nil.
func CurrentIdentity(c *gin.Context) *auth.Identity {
	if v, ok := c.Get(identityKey); ok {
		if identity, ok := v.(*auth.Identity); ok {
			return identity
		}
	}
	return auth.IdentityFrom(c.Request.Context())
}

// RequireResource answers 401 without running the handler when the policy denies the caller.
func RequireResource(resource auth.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.Permit(CurrentIdentity(c), resource) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}
