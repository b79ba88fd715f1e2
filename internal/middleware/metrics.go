package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ishihatta/HamiotFirebase/internal/telemetry"
)

// Metrics middleware collects Prometheus metrics for requests
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		path := routeOf(c)

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		status := strconv.Itoa(c.Writer.Status())

		telemetry.HTTPRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		telemetry.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(duration.Seconds())
	}
}

// routeOf returns the matched route template, or a fixed label for
// unmatched paths so scanners cannot blow up label cardinality.
func routeOf(c *gin.Context) string {
	if path := c.FullPath(); path != "" {
		return path
	}
	return "unmatched"
}
