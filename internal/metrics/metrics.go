package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizeRequests counts optimization runs by outcome (ok, error, validation_error)
	OptimizeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_requests_total", Help: "Optimization runs by outcome."},
		[]string{"outcome"},
	)
	// SolverDuration records end-to-end optimization durations in seconds
	SolverDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_duration_seconds", Help: "Optimization run duration in seconds.", Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60}},
	)
	// OptimizationScore tracks the 0-100 efficiency score of returned plans
	OptimizationScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimization_score", Help: "Plan efficiency score (0-100).", Buckets: []float64{10, 30, 50, 70, 80, 90, 95, 100}},
	)
	// UnassignedOrders tracks how many orders each run failed to place
	UnassignedOrders = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_unassigned_orders", Help: "Orders left unassigned per run.", Buckets: []float64{0, 1, 2, 5, 10, 20, 50}},
	)
	// FallbackRuns counts plans produced by the greedy assigner after a solver fault
	FallbackRuns = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimize_fallback_runs_total", Help: "Optimization runs degraded to the greedy fallback."},
	)
)

// RegisterDefault registers collectors to the package registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizeRequests)
		Registry.MustRegister(SolverDuration)
		Registry.MustRegister(OptimizationScore)
		Registry.MustRegister(UnassignedOrders)
		Registry.MustRegister(FallbackRuns)
		// Go/process collectors on our registry
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}

var regOnce sync.Once
