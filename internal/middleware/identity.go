package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
)

const (
	callerIDHeader   = "X-Caller-ID"
	callerRoleHeader = "X-Caller-Role"

	callerContextKey = "caller"
)

// IdentityMiddleware resolves the caller from the X-Caller-ID and
// X-Caller-Role headers set by the API gateway. Mutating requests
// without a caller are rejected; reads proceed with an empty caller.
func IdentityMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(callerIDHeader)
		role := domain.Role(c.GetHeader(callerRoleHeader))

		if c.Request.Method != http.MethodGet {
			if id == "" || role == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing caller identity"})
				return
			}
			if role != domain.RoleStudent && role != domain.RoleDriver && role != domain.RoleAdmin {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown caller role"})
				return
			}
		}

		c.Set(callerContextKey, domain.Caller{ID: id, Role: role})
		c.Next()
	}
}

// CallerFrom returns the caller resolved by IdentityMiddleware.
func CallerFrom(c *gin.Context) domain.Caller {
	if v, ok := c.Get(callerContextKey); ok {
		if caller, ok := v.(domain.Caller); ok {
			return caller
		}
	}
	return domain.Caller{}
}
