// ABOUTME: Prometheus metrics for import runs.
// ABOUTME: Written to a node_exporter textfile since the CLI is not a long-lived server.
package observability

import (
	"time"

	"github.com/harperreed/sweat/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "sweat"
	subsystem = "import"
)

// Metrics holds the collectors for one process on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	rowsRead      prometheus.Counter
	rowsDropped   *prometheus.CounterVec
	rowsSkipped   *prometheus.CounterVec
	rowsInserted  prometheus.Counter
	unresolvedIDs prometheus.Counter
	tableRows     prometheus.Gauge
	runDuration   prometheus.Histogram
	lastSuccess   prometheus.Gauge
}

// NewMetrics registers the import collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "runs_total",
			Help:      "Import runs by final status.",
		}, []string{"status"}),
		rowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_read_total",
			Help:      "CSV rows read from exports.",
		}),
		rowsDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_dropped_total",
			Help:      "Rows dropped during cleaning by reason.",
		}, []string{"reason"}),
		rowsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_skipped_total",
			Help:      "Rows not inserted by the loader by reason.",
		}, []string{"reason"}),
		rowsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "rows_inserted_total",
			Help:      "Rows inserted into workout_summary.",
		}),
		unresolvedIDs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "unresolved_ids_total",
			Help:      "Rows whose link carried no workout id.",
		}),
		tableRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "table_rows",
			Help:      "Rows in workout_summary after the last successful run.",
		}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "run_duration_seconds",
			Help:      "Wall time of import runs.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix timestamp of the most recent successful import run.",
		}),
	}

	m.registry.MustRegister(
		m.runs,
		m.rowsRead,
		m.rowsDropped,
		m.rowsSkipped,
		m.rowsInserted,
		m.unresolvedIDs,
		m.tableRows,
		m.runDuration,
		m.lastSuccess,
	)
	return m
}

// Registry exposes the private registry for tests and exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun folds a finished run into the collectors.
func (m *Metrics) ObserveRun(run *models.ImportRun) {
	if m == nil || run == nil {
		return
	}

	m.runs.WithLabelValues(string(run.Status)).Inc()
	m.rowsRead.Add(float64(run.RowsRead))
	m.rowsDropped.WithLabelValues("zero_duration").Add(float64(run.DroppedZeroDuration))
	m.rowsDropped.WithLabelValues("invalid_date").Add(float64(run.DroppedInvalidDate))
	m.rowsSkipped.WithLabelValues("existing").Add(float64(run.SkippedExisting))
	m.rowsSkipped.WithLabelValues("batch_duplicate").Add(float64(run.DuplicatesInBatch))
	m.rowsInserted.Add(float64(run.RowsInserted))
	m.unresolvedIDs.Add(float64(run.UnresolvedIDs))
	m.runDuration.Observe(run.Duration().Seconds())

	if run.Status == models.RunSucceeded {
		m.tableRows.Set(float64(run.TotalRows))
		recordTimestamp(m.lastSuccess, run.FinishedAt)
	}
}

// WriteTextfile writes every collector in the text exposition format. The write is
// atomic so a scraping node_exporter never sees a partial file.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func recordTimestamp(g prometheus.Gauge, ts time.Time) {
	if ts.IsZero() {
		return
	}
	g.Set(float64(ts.Unix()))
}
