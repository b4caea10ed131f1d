// Package metrics exposes Prometheus collectors for the sealevel commands and API.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Crawl run outcomes.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

var (
	crawlRunsTotal             *prometheus.CounterVec
	crawlRecordsParsed         prometheus.Gauge
	crawlFetchDurationSeconds  prometheus.Histogram
	artifactsWrittenTotal      *prometheus.CounterVec
	framesRenderedTotal        *prometheus.CounterVec
	analysisRunsTotal          *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		crawlRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sealevel_crawl_runs_total",
				Help: "Total number of crawl runs, labeled by status.",
			},
			[]string{"status"},
		)

		crawlRecordsParsed = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "sealevel_crawl_records_parsed",
				Help: "Number of yearly records parsed by the last successful crawl.",
			},
		)

		crawlFetchDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sealevel_crawl_fetch_duration_seconds",
				Help:    "Histogram of tide endpoint fetch latencies.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
		)

		artifactsWrittenTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sealevel_artifacts_written_total",
				Help: "Total number of artifacts written, labeled by kind.",
			},
			[]string{"kind"},
		)

		framesRenderedTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sealevel_animation_frames_rendered_total",
				Help: "Total number of animation frames rendered, labeled by radius policy.",
			},
			[]string{"policy"},
		)

		analysisRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sealevel_analysis_runs_total",
				Help: "Total number of analysis runs, labeled by status.",
			},
			[]string{"status"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveCrawl records the outcome of one crawl run.
func ObserveCrawl(status string, records int, fetch time.Duration) {
	Init()
	crawlRunsTotal.WithLabelValues(status).Inc()
	if fetch > 0 {
		crawlFetchDurationSeconds.Observe(fetch.Seconds())
	}
	if status == StatusSuccess {
		crawlRecordsParsed.Set(float64(records))
	}
}

// ObserveArtifact counts one written artifact of the given kind (csv, json, png, txt, gif).
func ObserveArtifact(kind string) {
	Init()
	artifactsWrittenTotal.WithLabelValues(kind).Inc()
}

// ObserveFrame counts one rendered animation frame.
func ObserveFrame(policy string) {
	Init()
	framesRenderedTotal.WithLabelValues(policy).Inc()
}

// ObserveAnalysis records the outcome of one analysis run.
func ObserveAnalysis(status string) {
	Init()
	analysisRunsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	Init()
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Middleware is a chi middleware that records HTTP request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r)

		routePattern := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			routePattern = rctx.RoutePattern()
		}

		ObserveHTTPRequest(r.Method, routePattern, ww.status, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	status int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}
