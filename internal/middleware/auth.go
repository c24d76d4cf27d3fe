package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdminKeyAuth protects the admin endpoints with a shared key sent in the
// X-Admin-Key header. No configured keys disables the endpoints entirely
// rather than leaving them open.
func AdminKeyAuth(adminKeys []string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(adminKeys) == 0 {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "not found",
			})
			return
		}

		provided := c.GetHeader("X-Admin-Key")
		valid := false
		for _, key := range adminKeys {
			// Constant-time comparison avoids leaking key content via timing.
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) == 1 {
				valid = true
			}
		}
		if !valid {
			logger.Warn("Admin auth rejected", zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   "unauthorized",
			})
			return
		}

		c.Next()
	}
}
