package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "storefront",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	cartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Total number of cart mutations.",
		},
		[]string{"op"},
	)

	ordersPlaced = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Total number of orders placed.",
		},
	)

	ordersCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "orders",
			Name:      "cancelled_total",
			Help:      "Total number of orders cancelled.",
		},
	)

	persistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "persistence",
			Name:      "failures_total",
			Help:      "Total number of best-effort persistence writes that failed.",
		},
		[]string{"key"},
	)

	authRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "auth",
			Name:      "requests_total",
			Help:      "Total number of remote auth calls by outcome.",
		},
		[]string{"op", "outcome"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		cartOperations,
		ordersPlaced,
		ordersCancelled,
		persistenceFailures,
		authRequests,
	)
}

// Handler exposes the registry in Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// IncInFlight marks the start of an HTTP request.
func IncInFlight() { httpInFlight.Inc() }

// DecInFlight marks the end of an HTTP request.
func DecInFlight() { httpInFlight.Dec() }

// ObserveHTTPRequest records a completed HTTP request.
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, status).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// CartOperation counts a cart mutation by operation name.
func CartOperation(op string) { cartOperations.WithLabelValues(op).Inc() }

// OrderPlaced counts a successful checkout.
func OrderPlaced() { ordersPlaced.Inc() }

// OrderCancelled counts an order removed from the ledger.
func OrderCancelled() { ordersCancelled.Inc() }

// PersistenceFailure counts a swallowed persistence write failure.
func PersistenceFailure(key string) { persistenceFailures.WithLabelValues(key).Inc() }

// AuthRequest counts a remote auth call by outcome.
func AuthRequest(op, outcome string) { authRequests.WithLabelValues(op, outcome).Inc() }
