package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/rcflow/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the rcflow collectors.
type Metrics struct {
	NodeVisits      *prometheus.CounterVec
	Traversals      *prometheus.CounterVec
	TraversalSteps  prometheus.Histogram
	VariableWrites  prometheus.Counter
	Interactions    *prometheus.CounterVec
	HTTPRequests    *prometheus.CounterVec
	HTTPRequestTime *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them on reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		NodeVisits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcflow_node_visits_total",
				Help: "Total number of node visits during traversal",
			},
			[]string{"kind"},
		),
		Traversals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcflow_traversals_total",
				Help: "Total number of traversals by stop reason",
			},
			[]string{"reason"},
		),
		TraversalSteps: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rcflow_traversal_steps",
				Help:    "Number of nodes visited per traversal",
				Buckets: []float64{1, 2, 3, 5, 8, 13, 21, 50, 100},
			},
		),
		VariableWrites: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "rcflow_variable_writes_total",
				Help: "Total number of memory writes by SetVariable nodes",
			},
		),
		Interactions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcflow_interactions_total",
				Help: "Interaction lifecycle events (started, or closed with a reason)",
			},
			[]string{"event"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rcflow_http_requests_total",
				Help: "Total number of HTTP requests processed",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestTime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rcflow_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
			[]string{"method", "route"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.NodeVisits,
			m.Traversals,
			m.TraversalSteps,
			m.VariableWrites,
			m.Interactions,
			m.HTTPRequests,
			m.HTTPRequestTime,
		)
	}
	return m
}

// Hooks returns lifecycle hooks that feed the metrics.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(string(e.NodeKind)).Inc()
		},
		OnVariableSet: func(context.Context, *domain.VariableEvent) {
			m.VariableWrites.Inc()
		},
		OnTraversalEnd: func(_ context.Context, e *domain.TraversalEvent) {
			m.Traversals.WithLabelValues(e.Reason).Inc()
			m.TraversalSteps.Observe(float64(e.Steps))
		},
		OnInteractionStart: func(context.Context, *domain.InteractionEvent) {
			m.Interactions.WithLabelValues("started").Inc()
		},
		OnInteractionClose: func(_ context.Context, e *domain.InteractionEvent) {
			m.Interactions.WithLabelValues("closed_" + e.Reason).Inc()
		},
	}
}

// RouteFunc resolves the route pattern of a served request, keeping label
// cardinality bounded.
type RouteFunc func(*http.Request) string

// HTTPMiddleware records request counts and latency per route.
func (m *Metrics) HTTPMiddleware(route RouteFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			pattern := route(r)
			if pattern == "" {
				pattern = "unmatched"
			}
			m.HTTPRequests.WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).Inc()
			m.HTTPRequestTime.WithLabelValues(r.Method, pattern).Observe(time.Since(start).Seconds())
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Flush keeps streaming handlers working behind the middleware.
func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}
