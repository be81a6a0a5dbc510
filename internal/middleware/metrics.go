package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chupolovski/planner-api/internal/service"
)

// Metrics records per-route request counts and latency through the metrics
// service. Observations use the route template so /sessions/:id stays one
// series regardless of the session id. Scrape and health traffic is not
// observed; it would dwarf the planner endpoints in every histogram.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	if metricsSvc == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		switch route {
		case "/metrics", "/metrics/snapshot", "/health", "/ready":
			return
		}

		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
