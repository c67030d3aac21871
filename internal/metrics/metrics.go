// Package metrics counts store activity on a private Prometheus registry.
//
// A CLI process is short-lived, so the registry is not served over HTTP;
// WriteTextfile dumps it in the node-exporter textfile format instead.
// All methods are safe on a nil *Metrics, which records nothing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rollcall"

// Metrics holds the store counters.
type Metrics struct {
	registry *prometheus.Registry

	saves        *prometheus.CounterVec
	saveFailures prometheus.Counter
	loads        *prometheus.CounterVec
	repairs      *prometheus.CounterVec
	backups      *prometheus.CounterVec
	imports      *prometheus.CounterVec
}

// New creates and registers the counters.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		saves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saves_total",
			Help:      "Successful state saves by tier.",
		}, []string{"tier"}),
		saveFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_failures_total",
			Help:      "Saves that failed on every tier.",
		}),
		loads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loads_total",
			Help:      "State loads by the source that satisfied them.",
		}, []string{"source"}),
		repairs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "integrity_repairs_total",
			Help:      "Integrity repairs applied by kind.",
		}, []string{"kind"}),
		backups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backup_operations_total",
			Help:      "Backup slot operations by operation and result.",
		}, []string{"op", "result"}),
		imports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "imports_total",
			Help:      "Import attempts by outcome.",
		}, []string{"outcome"}),
	}

	m.registry.MustRegister(m.saves, m.saveFailures, m.loads, m.repairs, m.backups, m.imports)
	return m
}

// Registry exposes the underlying registry as a Gatherer.
func (m *Metrics) Registry() prometheus.Gatherer {
	if m == nil {
		return prometheus.NewRegistry()
	}
	return m.registry
}

// Save records a successful save on tier.
func (m *Metrics) Save(tier string) {
	if m == nil {
		return
	}
	m.saves.WithLabelValues(tier).Inc()
}

// SaveFailed records a save that no tier accepted.
func (m *Metrics) SaveFailed() {
	if m == nil {
		return
	}
	m.saveFailures.Inc()
}

// Load records which source ("sqlite", "memory", "redis", "seed") produced state.
func (m *Metrics) Load(source string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(source).Inc()
}

// Repair adds n repairs of kind.
func (m *Metrics) Repair(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.repairs.WithLabelValues(kind).Add(float64(n))
}

// Backup records a backup slot operation.
func (m *Metrics) Backup(op string, ok bool) {
	if m == nil {
		return
	}
	m.backups.WithLabelValues(op, result(ok)).Inc()
}

// Import records an import outcome ("imported", "restored", "critical", "rejected").
func (m *Metrics) Import(outcome string) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(outcome).Inc()
}

// WriteTextfile writes the registry atomically to path.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.Registry())
}

func result(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
