// Package metrics records ingestion counters in a private Prometheus
// registry and exports them in the node_exporter textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

const namespace = "pulseload"

// Recorder holds the run metrics. Safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	files         *prometheus.CounterVec
	records       *prometheus.CounterVec
	rows          *prometheus.CounterVec
	flushDuration *prometheus.HistogramVec
	runDuration   *prometheus.GaugeVec
	lastRun       *prometheus.GaugeVec
}

// NewRecorder creates a Recorder with every collector registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Category runs by terminal state",
		}, []string{"category", "state"}),
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "files_total",
			Help:      "Quarter files by outcome",
		}, []string{"category", "outcome"}), // visited, skipped, failed
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Candidate records by outcome",
		}, []string{"category", "outcome"}), // extracted, emitted, deduplicated, dropped, sparse, conflict
		rows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_total",
			Help:      "Rows submitted to the store by outcome",
		}, []string{"category", "outcome"}), // loaded, failed
		flushDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flush_duration_seconds",
			Help:      "Time to submit one batch of rows",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"category"}),
		runDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run",
		}, []string{"category"}),
		lastRun: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}, []string{"category"}),
	}
	r.registry.MustRegister(r.runs, r.files, r.records, r.rows, r.flushDuration, r.runDuration, r.lastRun)
	return r
}

// Registry exposes the collectors, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// FlushObserver returns a callback that records batch latency for c.
func (r *Recorder) FlushObserver(c pulse.Category) func(rows, failed int, elapsed time.Duration) {
	hist := r.flushDuration.WithLabelValues(c.String())
	return func(_, _ int, elapsed time.Duration) {
		hist.Observe(elapsed.Seconds())
	}
}

// RecordSummary adds a finished run's counts.
func (r *Recorder) RecordSummary(s pulse.Summary) {
	c := s.Category.String()
	r.runs.WithLabelValues(c, s.State.String()).Inc()

	r.files.WithLabelValues(c, "visited").Add(float64(s.FilesVisited))
	r.files.WithLabelValues(c, "skipped").Add(float64(s.FilesSkipped))
	r.files.WithLabelValues(c, "failed").Add(float64(s.FilesFailed))

	r.records.WithLabelValues(c, "extracted").Add(float64(s.RecordsExtracted))
	r.records.WithLabelValues(c, "emitted").Add(float64(s.RecordsEmitted))
	r.records.WithLabelValues(c, "deduplicated").Add(float64(s.RecordsDeduplicated))
	r.records.WithLabelValues(c, "dropped").Add(float64(s.RecordsDropped))
	r.records.WithLabelValues(c, "sparse").Add(float64(s.SparseEntries))
	r.records.WithLabelValues(c, "conflict").Add(float64(s.Conflicts))

	r.rows.WithLabelValues(c, "loaded").Add(float64(s.RowsLoaded))
	r.rows.WithLabelValues(c, "failed").Add(float64(s.LoadFailures))

	r.runDuration.WithLabelValues(c).Set(s.Duration.Seconds())
	r.lastRun.WithLabelValues(c).SetToCurrentTime()
}

// WriteTextfile atomically writes every metric to path.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
