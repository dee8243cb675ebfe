package mw

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"parking-backend/internal/auth"
)

// AdminUsernameKey is the gin context key holding the authenticated username.
const AdminUsernameKey = "admin_username"

// RequireAuth verifies the Bearer token on every request and stores the
// authenticated username in the context.
func RequireAuth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header is required"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header must be in the format 'Bearer <token>'"})
			return
		}

		claims, err := svc.ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(AdminUsernameKey, claims.Username)
		c.Next()
	}
}
