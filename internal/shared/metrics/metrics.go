package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	intakeStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "intake_started_total",
		Help: "Total document intakes started.",
	})
	intakeCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "intake_completed_total",
		Help: "Total document intakes completed.",
	})
	intakeFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "intake_failed_total",
		Help: "Total document intakes failed.",
	}, []string{"reason"})
	intakeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "intake_duration_seconds",
		Help:    "End-to-end document intake duration in seconds.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	})
	flowInvocationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flow_invocations_total",
		Help: "LLM flow invocations by flow name and outcome.",
	}, []string{"flow", "outcome"})
	httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})
	httpRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

func init() {
	registry.MustRegister(
		intakeStartedTotal,
		intakeCompletedTotal,
		intakeFailedTotal,
		intakeDuration,
		flowInvocationsTotal,
		httpRequestsTotal,
		httpRequestDuration,
	)
}

// IncIntakeStarted increments the started counter.
func IncIntakeStarted() {
	intakeStartedTotal.Inc()
}

// IncIntakeCompleted increments the completed counter.
func IncIntakeCompleted() {
	intakeCompletedTotal.Inc()
}

// IncIntakeFailed increments the failed counter for a failure reason.
func IncIntakeFailed(reason string) {
	intakeFailedTotal.WithLabelValues(reason).Inc()
}

// ObserveIntakeDuration records an intake duration.
func ObserveIntakeDuration(d time.Duration) {
	if d < 0 {
		d = 0
	}
	intakeDuration.Observe(d.Seconds())
}

// IncFlowInvocation records one LLM flow invocation outcome ("ok" or "error").
func IncFlowInvocation(flow, outcome string) {
	flowInvocationsTotal.WithLabelValues(flow, outcome).Inc()
}

// HTTPMiddleware records per-request counters and latencies keyed by route template.
func HTTPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		httpRequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Handler exposes the Prometheus scrape endpoint.
func Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
