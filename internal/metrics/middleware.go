package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/medwayhorizons/healthbridge/internal/domain/catalog"
)

// Collection label values for requests outside a catalog collection.
const (
	collectionNone    = "none"
	collectionUnknown = "unknown"
)

var httpLabels = []string{"method", "path", "collection", "status"}

var (
	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "healthbridge",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds by route and catalog collection",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		httpLabels,
	)

	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "healthbridge",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by route and catalog collection",
		},
		httpLabels,
	)
)

func init() {
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(httpRequestsTotal)
}

// Middleware records HTTP request duration and count, labelled with the chi
// route pattern and the catalog collection named by the {kind} parameter.
func Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			rctx := chi.RouteContext(r.Context())
			labels := []string{
				r.Method,
				routeLabel(rctx),
				collectionLabel(rctx),
				strconv.Itoa(status),
			}
			httpRequestDuration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			httpRequestsTotal.WithLabelValues(labels...).Inc()
		})
	}
}

// routeLabel keeps path cardinality bounded by the route table.
func routeLabel(rctx *chi.Context) string {
	if rctx == nil || rctx.RoutePattern() == "" {
		return "unknown"
	}
	return rctx.RoutePattern()
}

// collectionLabel maps the {kind} parameter to a known collection name.
// Arbitrary client values collapse into "unknown".
func collectionLabel(rctx *chi.Context) string {
	if rctx == nil {
		return collectionNone
	}
	raw := rctx.URLParam("kind")
	if raw == "" {
		return collectionNone
	}
	kind, err := catalog.ParseKind(raw)
	if err != nil {
		return collectionUnknown
	}
	return kind.Collection()
}
