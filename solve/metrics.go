package solve

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus counters and gauges describing a single
// compilation run: how many layers were built, how many nodes were
// expanded, how often width pressure forced a merge, and the makespan
// last reported.
type Metrics struct {
	layersCompiled  prometheus.Counter
	nodesExpanded   prometheus.Counter
	mergesPerformed prometheus.Counter
	lastMakespan    prometheus.Gauge
}

// NewMetrics registers the solve package's metrics with registry. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() to isolate a single run (useful in tests,
// where repeated registration under the default registry would panic).
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		layersCompiled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rcpsp",
			Name:      "layers_compiled_total",
			Help:      "Number of decision-diagram layers built by the compiler",
		}),
		nodesExpanded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rcpsp",
			Name:      "nodes_expanded_total",
			Help:      "Number of (state, job) combined transitions evaluated",
		}),
		mergesPerformed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "rcpsp",
			Name:      "merges_performed_total",
			Help:      "Number of times layer width pressure forced a relaxed merge",
		}),
		lastMakespan: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "rcpsp",
			Name:      "last_makespan",
			Help:      "Makespan reported by the most recently completed compilation",
		}),
	}
}
