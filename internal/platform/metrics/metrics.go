package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photoloc",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "photoloc",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10},
	}, []string{"method", "path"})

	// Record building
	RecordsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photoloc",
		Subsystem: "records",
		Name:      "built_total",
		Help:      "Total photo location records built",
	}, []string{"projection"})

	RecordFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "photoloc",
		Subsystem: "records",
		Name:      "failures_total",
		Help:      "Total photos that did not produce a record",
	}, []string{"kind"})

	BatchBuildDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "photoloc",
		Subsystem: "records",
		Name:      "batch_build_duration_seconds",
		Help:      "Duration of building one record batch",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	})

	// EXIF cache
	ExifCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photoloc",
		Subsystem: "exif_cache",
		Name:      "hits_total",
		Help:      "Total EXIF metadata cache hits",
	})

	ExifCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "photoloc",
		Subsystem: "exif_cache",
		Name:      "misses_total",
		Help:      "Total EXIF metadata cache misses",
	})
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (w *statusRecorder) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Middleware records request metrics labelled by the chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// Raw paths would give every unknown URL its own series.
		path := "unmatched"
		if rc := chi.RouteContext(r.Context()); rc != nil {
			if p := rc.RoutePattern(); p != "" {
				path = p
			}
		}

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the Prometheus /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
