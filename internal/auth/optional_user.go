package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// OptionalUser sets a firebase uid in context without enforcing auth.
// - If X-User-Id is missing, it falls back to "demo-user".
// - Use this ONLY for development/testing.
func OptionalUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := strings.TrimSpace(c.GetHeader("X-User-Id"))
		if uid == "" {
			uid = "demo-user"
		}

		c.Set(CtxFirebaseUID, uid)
		c.Set(CtxEmail, strings.TrimSpace(c.GetHeader("X-User-Email")))
		c.Set(CtxDisplayName, strings.TrimSpace(c.GetHeader("X-User-Name")))

		if token := BearerToken(c); token != "" {
			c.Request = c.Request.WithContext(ContextWithToken(c.Request.Context(), token))
		}

		c.Next()
	}
}
