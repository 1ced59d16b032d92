// Package metrics counts engine activity with Prometheus collectors.
// Each Metrics owns its registry so tests and the CLI never share state.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/zjrosen/evencheck/internal/log"
)

// Metrics holds the engine collectors.
type Metrics struct {
	registry *prometheus.Registry

	MarksTotal        *prometheus.CounterVec
	MarksRejected     prometheus.Counter
	Registrations     prometheus.Counter
	Removals          prometheus.Counter
	RecordsCleared    prometheus.Counter
	PersistFailures   prometheus.Counter
	LoadWarnings      prometheus.Counter
	PersistDuration   prometheus.Histogram
	LedgerRecords     prometheus.Gauge
	RegisteredPersons prometheus.Gauge
}

// New creates a Metrics instance with every collector registered on a fresh
// registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		MarksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "evencheck_marks_total",
			Help: "Presence records written, by capture method",
		}, []string{"method"}),
		MarksRejected: factory.NewCounter(prometheus.CounterOpts{
			Name: "evencheck_marks_rejected_total",
			Help: "Marks refused because the individual was already marked that day",
		}),
		Registrations: factory.NewCounter(prometheus.CounterOpts{
			Name: "evencheck_registrations_total",
			Help: "Registry entries created or replaced",
		}),
		Removals: factory.NewCounter(prometheus.CounterOpts{
			Name: "evencheck_removals_total",
			Help: "Registry entries removed",
		}),
		RecordsCleared: factory.NewCounter(prometheus.CounterOpts{
			Name: "evencheck_records_cleared_total",
			Help: "Ledger records removed by clear operations",
		}),
		PersistFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "evencheck_persist_failures_total",
			Help: "Mutations rolled back because persistence failed",
		}),
		LoadWarnings: factory.NewCounter(prometheus.CounterOpts{
			Name: "evencheck_load_warnings_total",
			Help: "Resources that loaded empty because they were unreadable or malformed",
		}),
		PersistDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "evencheck_persist_duration_seconds",
			Help:    "Duration of a single persistence call",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
		LedgerRecords: factory.NewGauge(prometheus.GaugeOpts{
			Name: "evencheck_ledger_records",
			Help: "Records currently in the ledger",
		}),
		RegisteredPersons: factory.NewGauge(prometheus.GaugeOpts{
			Name: "evencheck_registered_individuals",
			Help: "Entries currently in the registry",
		}),
	}
}

// Registry exposes the underlying registry for gathering.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveMark records a successful mark.
func (m *Metrics) ObserveMark(method string) {
	m.MarksTotal.WithLabelValues(method).Inc()
}

// ObservePersist records the duration of a persistence call started at start
// and counts it as a failure when err is non-nil.
func (m *Metrics) ObservePersist(start time.Time, err error) {
	m.PersistDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		m.PersistFailures.Inc()
	}
}

// SetSizes updates the collection size gauges.
func (m *Metrics) SetSizes(individuals, records int) {
	m.RegisteredPersons.Set(float64(individuals))
	m.LedgerRecords.Set(float64(records))
}

// WriteTextfile writes the current values in the text exposition format for
// node_exporter's textfile collector. The write is atomic.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	log.Debug(log.CatMetrics, "Wrote metrics textfile", "path", path)
	return nil
}
