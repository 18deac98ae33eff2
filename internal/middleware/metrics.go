package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/maintcal/internal/observ"
)

// Metrics records request count, latency and in-flight gauge. Routes are
// labelled by their template so path parameters do not explode cardinality.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		observ.HTTPInFlight.Inc()
		defer observ.HTTPInFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		observ.HTTPRequests.WithLabelValues(c.Request.Method, route, status).Inc()
		observ.HTTPDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}
