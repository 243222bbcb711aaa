package middleware

import (
	"net/http"

	"marketzone/backend/internal/apperr"
	"marketzone/backend/internal/auth"

	"github.com/gin-gonic/gin"
)

const (
	identityKey = "identity"
	// UserIDKey is read by the request logger.
	UserIDKey = "userId"
)

// RequireAuth rejects requests without a valid bearer token and stores the
// caller's identity on the context.
func RequireAuth(v auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := v.Verify(auth.TokenFromRequest(c.Request))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": apperr.PublicMessage(err),
			})
			return
		}
		c.Set(identityKey, id)
		c.Set(UserIDKey, id.UserID)
		c.Next()
	}
}

// Identity returns the identity stored by RequireAuth.
func Identity(c *gin.Context) (auth.AuthenticatedIdentity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return auth.AuthenticatedIdentity{}, false
	}
	id, ok := v.(auth.AuthenticatedIdentity)
	return id, ok
}
