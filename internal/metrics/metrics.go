package metrics

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	CartAdd    = "add"
	CartRemove = "remove"
	CartClear  = "clear"

	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeFailure  = "failure"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"code", "method", "path"},
	)
	httpRequestsDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Current Number of HTTP requests being processed.",
		},
	)

	cartOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cart_operations_total",
			Help: "Cart mutations by operation.",
		},
		[]string{"operation"},
	)

	paymentLinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_payment_links_total",
			Help: "Payment URL requests by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)

	paymentLinkDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_payment_link_duration_seconds",
			Help:    "Latency of calls to the payment provider.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)
)

func init() {
	if err := prometheus.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{})); err != nil {
		slog.Debug("ProcessCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}

	if err := prometheus.Register(collectors.NewGoCollector()); err != nil {
		slog.Debug("GoCollector registration skipped (likely already registered)",
			slog.String("error", err.Error()))
	}
}

func RecordCartOperation(operation string) {
	cartOperationsTotal.WithLabelValues(operation).Inc()
}

// RecordPaymentLink counts one payment URL request. Duration is only
// observed for calls that reached the provider.
func RecordPaymentLink(provider, outcome string, duration time.Duration) {
	paymentLinksTotal.WithLabelValues(provider, outcome).Inc()
	if outcome != OutcomeRejected {
		paymentLinkDuration.WithLabelValues(provider).Observe(duration.Seconds())
	}
}

// wrapper around http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}

var apiRoutes = map[string]struct{}{
	"/api/products":    {},
	"/api/cart":        {},
	"/api/cart/add":    {},
	"/api/cart/remove": {},
	"/api/cart/clear":  {},
	"/api/pay-url":     {},
	"/api/checkout":    {},
	"/health":          {},
	"/metrics":         {},
}

const productsPrefix = "/api/products/"

// pathLabel maps a request path onto a fixed set of route labels so clients
// cannot mint new series.
func pathLabel(path string) string {
	if _, ok := apiRoutes[path]; ok {
		return path
	}

	if id, ok := strings.CutPrefix(path, productsPrefix); ok && id != "" && !strings.Contains(id, "/") {
		return productsPrefix + "{id}"
	}

	if strings.HasPrefix(path, "/api/") {
		return "/api/other"
	}

	return "/static"
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {

		start := time.Now()
		httpRequestsInFlight.Inc()

		rw := newResponseWriter(w)
		path := pathLabel(r.URL.Path)

		defer func() {

			duration := time.Since(start)
			statusCodeStr := strconv.Itoa(rw.statusCode)

			httpRequestsTotal.WithLabelValues(statusCodeStr, r.Method, path).Inc()
			httpRequestsDuration.WithLabelValues(r.Method, path).Observe(duration.Seconds())
			httpRequestsInFlight.Dec()

		}()

		next.ServeHTTP(rw, r)

	})
}

// http.Handler for the Prometheus /metrics endpoint
func Handler() http.Handler {

	return promhttp.Handler()
}
