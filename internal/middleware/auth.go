package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pedalpoint/bikerental-backend/internal/token"
	"github.com/pedalpoint/bikerental-backend/policy"
	"github.com/pedalpoint/bikerental-backend/user"
)

// actorKey stores the authenticated Actor in the Gin context.
const actorKey = "actor"

// Auth validates the bearer token and attaches the resulting Actor to the
// request. Requests without a valid token are rejected with 401 before any
// handler runs.
func Auth(tokens *token.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "code": "UNAUTHORIZED", "message": "Authentication required",
			})
			return
		}

		id, claims, err := tokens.Verify(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "code": "UNAUTHORIZED", "message": "Invalid or expired token",
			})
			return
		}

		c.Set(actorKey, policy.Actor{ID: id, Role: claims.Role, Email: claims.Email})
		c.Next()
	}
}

// RequireRoles rejects authenticated requests whose actor carries none of
// the given roles.
func RequireRoles(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false, "code": "UNAUTHORIZED", "message": "Authentication required",
			})
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false, "code": "ACCESS_DENIED", "message": "Access denied",
		})
	}
}

// GetActor extracts the authenticated Actor set by Auth.
func GetActor(c *gin.Context) (policy.Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return policy.Actor{}, false
	}
	actor, ok := v.(policy.Actor)
	return actor, ok
}
