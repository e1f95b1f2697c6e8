package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "user_auth",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "user_auth",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	authFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "user_auth",
			Subsystem: "http",
			Name:      "auth_failures_total",
			Help:      "Requests rejected with 401",
		},
		[]string{"path"},
	)
)

// Metrics records request count and latency per route template.
// Unmatched routes are labelled "unmatched" to keep label cardinality bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		code := strconv.Itoa(status)

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, code).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, code).Observe(time.Since(start).Seconds())
		if status == 401 {
			authFailuresTotal.WithLabelValues(path).Inc()
		}
	}
}
