package middleware

import (
	"net/http"

	"marketzone/backend/internal/logger"
	"marketzone/backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// RateLimit throttles requests per client IP.
func RateLimit(l *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !l.Allow(ip) {
			logger.Warn().Str("ip", ip).Str("path", c.Request.URL.Path).Msg("Rate limit exceeded")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"message": "Too many requests from this IP, please try again later.",
			})
			return
		}
		c.Next()
	}
}
