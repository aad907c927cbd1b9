package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"carpool/internal/logger"
)

// Logger writes one structured line per request including request_id.
func Logger(log logger.Logger) gin.HandlerFunc {
	log = log.Action("http_request")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		args := []any{
			"request_id", GetRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", float64(latency.Microseconds()) / 1000.0,
			"ip", c.ClientIP(),
		}
		if p, ok := GetPrincipal(c); ok {
			args = append(args, "user_id", p.UserID)
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Warn("request failed", args...)
		default:
			log.Info("request", args...)
		}
	}
}
