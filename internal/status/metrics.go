// Package status exposes run progress: Prometheus metrics fed by the worker
// and an optional HTTP server publishing them.
package status

import (
	"sync/atomic"
	"time"

	"github.com/koustreak/pmysql/internal/errs"
	"github.com/koustreak/pmysql/internal/worker"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts task progress. It implements worker.Observer and is safe
// for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	tasksStarted  prometheus.Counter
	tasksFinished *prometheus.CounterVec
	failures      *prometheus.CounterVec
	rows          prometheus.Counter
	inFlight      prometheus.Gauge

	started   atomic.Int64
	finished  atomic.Int64
	failed    atomic.Int64
	rowCount  atomic.Int64
	startedAt time.Time
}

var _ worker.Observer = (*Metrics)(nil)

// NewMetrics registers the pmysql collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tasksStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pmysql_tasks_started_total",
			Help: "Server tasks started",
		}),
		tasksFinished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pmysql_tasks_finished_total",
			Help: "Server tasks finished, by outcome",
		}, []string{"outcome"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pmysql_failures_total",
			Help: "Reported failures, by kind",
		}, []string{"kind"}),
		rows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pmysql_rows_total",
			Help: "Result rows written to the output",
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pmysql_tasks_in_flight",
			Help: "Server tasks currently running",
		}),
		startedAt: time.Now(),
	}
	m.registry.MustRegister(m.tasksStarted, m.tasksFinished, m.failures, m.rows, m.inFlight)
	return m
}

// Registry returns the registry holding the pmysql collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// TaskStarted counts a task and marks it in flight.
func (m *Metrics) TaskStarted(string) {
	m.started.Add(1)
	m.tasksStarted.Inc()
	m.inFlight.Inc()
}

// TaskFinished records res's outcome and clears the in-flight mark.
func (m *Metrics) TaskFinished(res worker.Result) {
	outcome := "ok"
	switch {
	case res.Aborted:
		outcome = "aborted"
	case res.Failures > 0:
		outcome = "failed"
	}
	if res.Failures > 0 {
		m.failed.Add(1)
	}
	m.finished.Add(1)
	m.tasksFinished.WithLabelValues(outcome).Inc()
	m.inFlight.Dec()
}

// Failure counts err under its kind.
func (m *Metrics) Failure(err *errs.Error) {
	m.failures.WithLabelValues(err.Kind.String()).Inc()
}

// Row counts one output row.
func (m *Metrics) Row(string) {
	m.rowCount.Add(1)
	m.rows.Inc()
}

// Snapshot is a point-in-time view of a run.
type Snapshot struct {
	Started  int64   `json:"tasks_started"`
	Finished int64   `json:"tasks_finished"`
	InFlight int64   `json:"tasks_in_flight"`
	Failed   int64   `json:"tasks_failed"`
	Rows     int64   `json:"rows"`
	Uptime   float64 `json:"uptime_seconds"`
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() Snapshot {
	finished := m.finished.Load()
	started := m.started.Load()
	return Snapshot{
		Started:  started,
		Finished: finished,
		InFlight: started - finished,
		Failed:   m.failed.Load(),
		Rows:     m.rowCount.Load(),
		Uptime:   time.Since(m.startedAt).Seconds(),
	}
}
