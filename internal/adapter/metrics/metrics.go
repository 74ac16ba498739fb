package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// EngineMetrics holds all Prometheus metrics for the log engine.
type EngineMetrics struct {
	RecordsTotal *prometheus.CounterVec
	QueriesTotal *prometheus.CounterVec
	StoreSize    *prometheus.GaugeVec
	ExportsTotal prometheus.Counter
}

// NewEngineMetrics initializes and registers the Prometheus metrics.
func NewEngineMetrics() *EngineMetrics {
	return &EngineMetrics{
		RecordsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log_console",
			Subsystem: "engine",
			Name:      "records_total",
			Help:      "Total number of records by producer and outcome.",
		}, []string{"producer", "outcome"}), // outcome: stored, evicted, rejected, dropped_paused, dropped_disabled
		QueriesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "log_console",
			Subsystem: "engine",
			Name:      "queries_total",
			Help:      "Total number of query operations by kind.",
		}, []string{"operation"}), // operation: filter, facets, stats
		StoreSize: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "log_console",
			Subsystem: "engine",
			Name:      "store_size",
			Help:      "Current number of buffered records per producer.",
		}, []string{"producer"}),
		ExportsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: "log_console",
			Subsystem: "engine",
			Name:      "exports_total",
			Help:      "Total number of export operations.",
		}),
	}
}
