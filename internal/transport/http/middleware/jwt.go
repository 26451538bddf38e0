package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"learnpool-client/internal/model"
	"learnpool-client/internal/pkg/jwtutil"
	"learnpool-client/internal/transport/http/response"
)

const (
	ContextUserIDKey      = "user_id"
	ContextDisplayNameKey = "display_name"
	ContextRoleKey        = "role"
)

func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization header")
			c.Abort()
			return
		}

		const prefix = "Bearer "
		if !strings.HasPrefix(authHeader, prefix) {
			response.Error(c, http.StatusUnauthorized, "invalid authorization scheme")
			c.Abort()
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, prefix))
		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextUserIDKey, claims.UserID)
		c.Set(ContextDisplayNameKey, claims.DisplayName)
		c.Set(ContextRoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole guards a route group to one role. It assumes AuthJWT ran
// earlier in the chain.
func RequireRole(role model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		got, exists := c.Get(ContextRoleKey)
		if !exists || got.(model.Role) != role {
			response.Error(c, http.StatusForbidden, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// UserID reads the authenticated user id set by AuthJWT.
func UserID(c *gin.Context) uint {
	v, _ := c.Get(ContextUserIDKey)
	id, _ := v.(uint)
	return id
}
