package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemvault_http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itemvault_http_request_duration_seconds",
		Help:    "Duration of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemvault_auth_attempts_total",
		Help: "Count of register and login attempts by result",
	}, []string{"operation", "result"})

	itemOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemvault_item_operations_total",
		Help: "Count of item mutations by action and result",
	}, []string{"action", "result"})

	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itemvault_cache_lookups_total",
		Help: "Item list cache lookups by outcome",
	}, []string{"outcome"})

	totalItems = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "itemvault_items_total",
		Help: "Number of items across all owners, refreshed by the stats worker",
	})
)

// ObserveHTTPRequest records an HTTP request metric
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// ObserveAuthAttempt records a register or login attempt with a result label.
func ObserveAuthAttempt(operation, result string) {
	authAttempts.WithLabelValues(operation, result).Inc()
}

// ObserveItemOperation records an item mutation attempt
func ObserveItemOperation(action, result string) {
	itemOperations.WithLabelValues(action, result).Inc()
}

// ObserveCacheLookup records a cache hit or miss
func ObserveCacheLookup(outcome string) {
	cacheLookups.WithLabelValues(outcome).Inc()
}

// SetTotalItems sets the item count gauge
func SetTotalItems(count int) {
	if count < 0 {
		count = 0
	}
	totalItems.Set(float64(count))
}
