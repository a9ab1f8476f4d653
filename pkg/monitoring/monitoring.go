package monitoring

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	pp "net/http/pprof"

	"nightlife-navigator/pkg/metrics"
)

// ResponseWriter wrapper to capture status codes
type statusWriter struct {
	http.ResponseWriter
	statusCode int
}

func (sw *statusWriter) WriteHeader(statusCode int) {
	sw.statusCode = statusCode
	sw.ResponseWriter.WriteHeader(statusCode)
}

// Middleware counts requests by status code and records their duration in
// the given registry.
func Middleware(reg *metrics.Registry) func(http.Handler) http.Handler {
	requests := reg.CounterVec("http_requests_total", "HTTP requests by status code", "code")
	duration := reg.Histogram("http_request_duration_seconds", "HTTP request duration", []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30, 120})
	inflight := reg.Gauge("http_requests_in_flight", "HTTP requests being served")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			inflight.Add(1)
			defer inflight.Add(-1)

			sw := &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(sw, r)

			requests.With(strconv.Itoa(sw.statusCode)).Inc(1)
			duration.ObserveSince(start)
		})
	}
}

// RecordRuntime publishes goroutine and heap gauges. Call it before serving
// the metrics page.
func RecordRuntime(reg *metrics.Registry) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	reg.Gauge("go_goroutines", "Number of goroutines").Set(float64(runtime.NumGoroutine()))
	reg.Gauge("go_memstats_heap_inuse_bytes", "Heap bytes in use").Set(float64(ms.HeapInuse))
	reg.Gauge("go_gc_cycles_total", "Completed GC cycles").Set(float64(ms.NumGC))
}

// MetricsHandler refreshes runtime gauges and serves the registry.
func MetricsHandler(reg *metrics.Registry) http.Handler {
	inner := reg.Handler()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RecordRuntime(reg)
		inner.ServeHTTP(w, r)
	})
}

// RegisterPprof registers the standard pprof handlers under /debug/pprof/.
func RegisterPprof(mux *http.ServeMux) {
	mux.HandleFunc("/debug/pprof/", pp.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pp.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pp.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pp.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pp.Trace)
}
