package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const identityKey = "auth.identity"

// Syncer is told about every authenticated caller.
type Syncer interface {
	Sync(ctx context.Context, id Identity)
}

// BearerToken extracts the token from the Authorization header, falling
// back to the token query parameter for clients that cannot set headers
// (EventSource).
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return c.Query("token")
}

// Middleware rejects requests without a valid token with 401 and stores
// the caller's identity in the context otherwise.
func Middleware(tokens *Tokens, syncer Syncer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := tokens.Verify(BearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		c.Set(identityKey, id)
		if syncer != nil {
			syncer.Sync(c.Request.Context(), id)
		}
		c.Next()
	}
}

// FromContext returns the identity stored by Middleware.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// MustIdentity is FromContext for handlers mounted behind Middleware.
func MustIdentity(c *gin.Context) Identity {
	id, ok := FromContext(c)
	if !ok {
		panic("auth: handler mounted without auth middleware")
	}
	return id
}
