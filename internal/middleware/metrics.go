package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SscSPs/lecturer_claims_app/internal/metrics"
)

// MetricsMiddleware records request counts and latency by route template.
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.RecordAPIRequest(c.Request.Method, path, c.Writer.Status(), time.Since(start).Seconds())
	}
}
