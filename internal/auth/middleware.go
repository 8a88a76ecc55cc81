package auth

import (
	"context"
	"net/http"

	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/models"
	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// RevocationList reports whether a token id was revoked before expiry.
type RevocationList interface {
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// Middleware validates the bearer token and stores the caller's Identity in
// the gin context. revoked may be nil.
func Middleware(cfg *config.Config, revoked RevocationList) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authorization header required",
			})
			return
		}

		tokenString, err := ExtractTokenFromHeader(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid authorization header",
			})
			return
		}

		claims, err := ValidateToken(cfg, tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid token",
			})
			return
		}

		if revoked != nil {
			isRevoked, err := revoked.IsTokenRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
					"error":   "Failed to check token",
					"details": err.Error(),
				})
				return
			}
			if isRevoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Token has been revoked",
				})
				return
			}
		}

		c.Set(identityKey, claims.Identity())
		c.Next()
	}
}

// FromContext returns the Identity stored by Middleware.
func FromContext(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// WithIdentity stores id in the gin context. Tests and internal callers use it
// to skip token parsing.
func WithIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
}

// RequireRole must run after Middleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := FromContext(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Authentication required",
			})
			return
		}
		for _, r := range roles {
			if id.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error": "Access denied",
		})
	}
}
