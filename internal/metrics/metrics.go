// Package metrics exposes Prometheus collectors for the settlement engine
// and the RPC surface.
package metrics

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tripsettle"

// Metrics groups the collectors. A nil *Metrics records nothing.
type Metrics struct {
	reports     *prometheus.CounterVec
	duration    prometheus.Histogram
	suggestions prometheus.Histogram
	unresolved  prometheus.Counter
	rpcs        *prometheus.CounterVec
}

// New registers all collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		reports: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "balance_reports_total",
			Help:      "Balance reports served, by source (computed or cache).",
		}, []string{"source"}),
		duration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_duration_seconds",
			Help:      "Time spent computing balances and suggestions for one trip.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		suggestions: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "suggested_settlements",
			Help:      "Number of payments suggested per computed report.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}),
		unresolved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unresolved_participants_total",
			Help:      "Participant ids referenced by expenses or settlements but missing from their trip.",
		}),
		rpcs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rpc_requests_total",
			Help:      "Connect RPCs handled, by procedure and result code.",
		}, []string{"procedure", "code"}),
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors
// already registered.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}

// ObserveComputed records one engine run.
func (m *Metrics) ObserveComputed(elapsed time.Duration, suggestions, unresolved int) {
	if m == nil {
		return
	}
	m.reports.WithLabelValues("computed").Inc()
	m.duration.Observe(elapsed.Seconds())
	m.suggestions.Observe(float64(suggestions))
	m.unresolved.Add(float64(unresolved))
}

// ObserveCacheHit records a report served from the cache.
func (m *Metrics) ObserveCacheHit() {
	if m == nil {
		return
	}
	m.reports.WithLabelValues("cache").Inc()
}

// Interceptor counts every unary RPC by procedure and Connect code.
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			resp, err := next(ctx, req)
			if m != nil {
				code := "ok"
				if err != nil {
					code = connect.CodeOf(err).String()
				}
				m.rpcs.WithLabelValues(req.Spec().Procedure, code).Inc()
			}
			return resp, err
		}
	}
}
