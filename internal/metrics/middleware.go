package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

// unmatchedRoute labels requests no route matched, so raw paths never become label values.
const unmatchedRoute = "unmatched"

// HTTP Prometheus metrics, labelled by chi route pattern.
var (
	apiLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foofind",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "API request latency by route",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route", "code"},
	)

	apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foofind",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "API requests by route and status code",
		},
		[]string{"method", "route", "code"},
	)

	apiResponseBytes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foofind",
			Subsystem: "api",
			Name:      "response_bytes_total",
			Help:      "Bytes written in API response bodies",
		},
		[]string{"route"},
	)

	apiInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "foofind",
		Subsystem: "api",
		Name:      "requests_in_flight",
		Help:      "API requests currently being served",
	})
)

func init() {
	prometheus.MustRegister(apiLatency, apiRequests, apiResponseBytes, apiInFlight)
}

// Middleware records latency, count and response size of every request.
// It must be mounted on a chi router so the route pattern is known after routing.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiInFlight.Inc()
			defer apiInFlight.Dec()

			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			code := ww.Status()
			if code == 0 {
				code = http.StatusOK
			}
			route := routeLabel(r)
			labels := prometheus.Labels{"method": r.Method, "route": route, "code": strconv.Itoa(code)}
			apiLatency.With(labels).Observe(time.Since(start).Seconds())
			apiRequests.With(labels).Inc()
			apiResponseBytes.WithLabelValues(route).Add(float64(ww.BytesWritten()))
		})
	}
}

func routeLabel(r *http.Request) string {
	rc := chi.RouteContext(r.Context())
	if rc == nil {
		return unmatchedRoute
	}
	if p := rc.RoutePattern(); p != "" {
		return p
	}
	return unmatchedRoute
}
