package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	barsIngested   *prometheus.CounterVec
	returnsEmitted prometheus.Counter
	rowsSkipped    *prometheus.CounterVec
	backendRows    *prometheus.CounterVec
	runs           *prometheus.CounterVec
	runDuration    prometheus.Histogram
	lastClose      *prometheus.GaugeVec
	errorsTotal    *prometheus.CounterVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		barsIngested: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_bars_ingested_total",
				Help: "Total number of price bars ingested per ticker",
			},
			[]string{"ticker"},
		),
		returnsEmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "sectorpulse_returns_emitted_total",
				Help: "Total number of daily return records emitted",
			},
		),
		rowsSkipped: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_rows_skipped_total",
				Help: "Rows excluded by the transform, by reason",
			},
			[]string{"reason"},
		),
		backendRows: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_backend_rows_total",
				Help: "Rows routed to a backend",
			},
			[]string{"backend"},
		),
		runs: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_runs_total",
				Help: "Pipeline runs by terminal status",
			},
			[]string{"status"},
		),
		runDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "sectorpulse_run_duration_seconds",
				Help:    "Duration of full pipeline runs in seconds",
				Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
			},
		),
		lastClose: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sectorpulse_last_close",
				Help: "Most recent ingested close per ticker",
			},
			[]string{"ticker"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sectorpulse_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
	}
}

// RecordBarsIngested records ingested bars for a ticker.
func (r *Recorder) RecordBarsIngested(ticker string, n int) {
	r.barsIngested.WithLabelValues(ticker).Add(float64(n))
}

// RecordReturnsEmitted records emitted return records.
func (r *Recorder) RecordReturnsEmitted(n int) {
	r.returnsEmitted.Add(float64(n))
}

// RecordSkipped records rows excluded for a reason.
func (r *Recorder) RecordSkipped(reason string, n int) {
	if n > 0 {
		r.rowsSkipped.WithLabelValues(reason).Add(float64(n))
	}
}

// RecordBackendRows records rows routed to a backend.
func (r *Recorder) RecordBackendRows(backend string, n int) {
	r.backendRows.WithLabelValues(backend).Add(float64(n))
}

// RecordRun records a finished run with its duration.
func (r *Recorder) RecordRun(status string, seconds float64) {
	r.runs.WithLabelValues(status).Inc()
	r.runDuration.Observe(seconds)
}

// RecordLastClose records the latest close for a ticker.
func (r *Recorder) RecordLastClose(ticker string, close float64) {
	r.lastClose.WithLabelValues(ticker).Set(close)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}
