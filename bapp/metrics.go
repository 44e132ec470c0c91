package bapp

import (
	"strconv"
	"time"

	"github.com/advdv/broute"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// metricsNamespace prefixes every metric the app registers.
const metricsNamespace = "broute"

// Metrics holds the Prometheus metrics for dispatches served by the app.
type Metrics struct {
	dispatchesTotal  *prometheus.CounterVec
	dispatchDuration *prometheus.HistogramVec
}

// NewRegistry creates the registry the app's metrics are registered with and served from. It also
// carries the standard process and Go runtime collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewGoCollector(),
	)

	return reg
}

// NewMetrics registers the dispatch metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		dispatchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "dispatches_total",
			Help:      "Total number of dispatched requests by method, outcome and status",
		}, []string{"method", "outcome", "status"}),

		dispatchDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "dispatch_duration_seconds",
			Help:      "Dispatch duration in seconds, including the teardown of the response",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "outcome"}),
	}
}

// Observe records one dispatch. It has the signature of [broute.OutcomeFunc].
func (m *Metrics) Observe(req *broute.Request, resp *broute.Response, outcome broute.Outcome, elapsed time.Duration) {
	m.dispatchesTotal.WithLabelValues(req.Method, outcome.String(), strconv.Itoa(resp.Status())).Inc()
	m.dispatchDuration.WithLabelValues(req.Method, outcome.String()).Observe(elapsed.Seconds())
}
