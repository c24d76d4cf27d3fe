package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kidscience/card-service/internal/ratelimit"
)

// RateLimit returns middleware enforcing a per-client fixed-window limit.
// Every response carries X-RateLimit-* headers so the front-end can show the
// remaining quota; a rejected request gets 429 with a child-friendly message.
func RateLimit(store ratelimit.Store, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := clientKey(c)
		decision := store.Check(key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(decision.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
		c.Header("X-RateLimit-Reset", decision.Reset.UTC().Format(time.RFC3339))

		if !decision.Allowed {
			logger.Warn("Rate limit exceeded",
				zap.String("client", key),
				zap.String("path", c.Request.URL.Path))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "请求过于频繁，请稍后再试",
			})
			return
		}

		c.Next()
	}
}

// clientKey identifies the caller for rate limiting purposes. Behind a proxy
// the TCP peer is the proxy itself, so forwarded headers take precedence.
func clientKey(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		// The first entry is the original client; later entries are proxies.
		if idx := strings.IndexByte(xff, ','); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}
	if rip := c.GetHeader("X-Real-IP"); rip != "" {
		return strings.TrimSpace(rip)
	}
	return c.ClientIP()
}
