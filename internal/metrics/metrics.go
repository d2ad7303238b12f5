package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_http_requests_total",
		Help: "Total HTTP requests by method, route and status code.",
	}, []string{"method", "route", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "workshop_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	ordersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "workshop_orders_created_total",
		Help: "Orders created, by order type.",
	}, []string{"type"})

	orderTotalAmount = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "workshop_order_total_amount",
		Help:    "Distribution of order totals at creation time.",
		Buckets: prometheus.ExponentialBuckets(10, 2.5, 10),
	})
)

// ObserveOrderCreated records a created order and its total.
func ObserveOrderCreated(orderType string, total float64) {
	ordersCreatedTotal.WithLabelValues(orderType).Inc()
	orderTotalAmount.Observe(total)
}

// Middleware instruments every request with a counter and latency histogram.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}

		httpRequestsTotal.WithLabelValues(
			c.Request.Method,
			route,
			strconv.Itoa(c.Writer.Status()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
