package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"board-sync/internal/metrics"
)

// Metrics records request rate and latency per route pattern. Probe and
// scrape endpoints are skipped so they do not drown out the board traffic.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metrics.ShouldSkipEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Label by route pattern; requests that matched no route share one label
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RecordHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
