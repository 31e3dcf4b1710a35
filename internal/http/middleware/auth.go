// README: Bearer session-token authentication and role guards.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"breeze/internal/auth"
	"breeze/internal/types"
)

const (
	ctxKeyCallerID    = "caller_id"
	ctxKeyCallerRole  = "caller_role"
	ctxKeyCallerEmail = "caller_email"
)

// Auth verifies the Authorization bearer token and populates caller identity.
// Requests without a valid session token are rejected with 401.
func Auth(cfg auth.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			abortUnauthorized(c, "malformed authorization header")
			return
		}
		claims, err := auth.Parse(cfg, token)
		if err != nil {
			abortUnauthorized(c, "invalid or expired session")
			return
		}
		c.Set(ctxKeyCallerID, claims.Subject)
		c.Set(ctxKeyCallerRole, claims.Role)
		c.Set(ctxKeyCallerEmail, claims.Email)
		c.Next()
	}
}

// RequireRole rejects authenticated callers whose role is not the given one.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if CallerRole(c) != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// CallerID returns the authenticated account id, or "" when unauthenticated.
func CallerID(c *gin.Context) types.ID {
	return types.ID(c.GetString(ctxKeyCallerID))
}

// CallerRole returns the authenticated caller's role, or "".
func CallerRole(c *gin.Context) string {
	return c.GetString(ctxKeyCallerRole)
}

// CallerEmail returns the authenticated caller's email, or "".
func CallerEmail(c *gin.Context) string {
	return c.GetString(ctxKeyCallerEmail)
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
