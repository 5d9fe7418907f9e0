package metrics

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
			Name: "commercial_manager_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commercial_manager_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "commercial_manager_order_operations_total",
			Help: "Total number of purchase order operations",
		},
		[]string{"operation", "status"},
	)

	orderOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "commercial_manager_order_operation_duration_seconds",
			Help:    "Duration of purchase order operations, transaction included",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// GinMiddleware records request count and latency per route.
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		status := strconv.Itoa(c.Writer.Status())
		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
	}
}

// RecordOrderOperation counts one order operation and its latency.
func RecordOrderOperation(operation string, started time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	orderOperations.WithLabelValues(operation, status).Inc()
	orderOperationDuration.WithLabelValues(operation).Observe(time.Since(started).Seconds())
}
