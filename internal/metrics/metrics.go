// Package metrics exposes Prometheus instrumentation for the cleanup
// pipeline: per-run outcomes, message outcome counters, delete batches
// and rate-limit pressure.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SweepMetrics struct {
	registry      *prometheus.Registry
	runsTotal     *prometheus.CounterVec
	messagesTotal *prometheus.CounterVec
	batchesTotal  *prometheus.CounterVec
	rateLimitHits prometheus.Counter
	activeRuns    prometheus.Gauge
	sweepDuration prometheus.Histogram
}

// New registers all sweep collectors on a fresh registry.
func New(namespace string) *SweepMetrics {
	reg := prometheus.NewRegistry()

	m := &SweepMetrics{
		registry: reg,
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total number of cleanup runs by terminal outcome",
			},
			[]string{"outcome"},
		),
		messagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "messages_total",
				Help:      "Total number of messages by sweep outcome",
			},
			[]string{"outcome"},
		),
		batchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "delete_batches_total",
				Help:      "Total number of delete batches by result",
			},
			[]string{"result"},
		),
		rateLimitHits: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rate_limit_hits_total",
				Help:      "Number of rate-limit responses from the platform",
			},
		),
		activeRuns: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_runs",
				Help:      "Number of cleanup runs currently in flight",
			},
		),
		sweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "sweep_duration_seconds",
				Help:      "Duration of completed cleanup runs",
				Buckets:   []float64{1, 5, 15, 60, 300, 900, 3600},
			},
		),
	}

	reg.MustRegister(
		m.runsTotal,
		m.messagesTotal,
		m.batchesTotal,
		m.rateLimitHits,
		m.activeRuns,
		m.sweepDuration,
	)

	return m
}

// RecordRun counts a terminal run outcome with its duration.
func (m *SweepMetrics) RecordRun(outcome string, duration time.Duration) {
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.sweepDuration.Observe(duration.Seconds())
}

// RecordMessages counts message outcomes from a finished run.
func (m *SweepMetrics) RecordMessages(kept, deleted, errored int) {
	m.messagesTotal.WithLabelValues("kept").Add(float64(kept))
	m.messagesTotal.WithLabelValues("deleted").Add(float64(deleted))
	m.messagesTotal.WithLabelValues("errored").Add(float64(errored))
}

// RecordBatch counts one issued delete batch by result.
func (m *SweepMetrics) RecordBatch(result string) {
	m.batchesTotal.WithLabelValues(result).Inc()
}

// RecordRateLimit counts one rate-limit response.
func (m *SweepMetrics) RecordRateLimit() {
	m.rateLimitHits.Inc()
}

// RunStarted and RunFinished track the in-flight run gauge.
func (m *SweepMetrics) RunStarted()  { m.activeRuns.Inc() }
func (m *SweepMetrics) RunFinished() { m.activeRuns.Dec() }

// Handler returns the HTTP handler serving this registry.
func (m *SweepMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve runs a metrics HTTP listener until ctx is cancelled.
func (m *SweepMetrics) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
