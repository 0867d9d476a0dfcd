package telemetry

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SweepMetrics holds the Prometheus collectors describing a running sweep.
type SweepMetrics struct {
	Registry *prometheus.Registry

	DatasetsTotal     prometheus.Gauge
	DatasetsCompleted prometheus.Counter
	CurrentSize       prometheus.Gauge
	SweepsFinished    *prometheus.CounterVec
	RepetitionSeconds *prometheus.HistogramVec
	MeanSeconds       *prometheus.GaugeVec
	AllocBytes        *prometheus.GaugeVec
	PeakAllocBytes    *prometheus.GaugeVec
}

// NewSweepMetrics creates the sweep collectors and registers them on a fresh
// registry, together with the Go runtime and process collectors.
func NewSweepMetrics() *SweepMetrics {
	m := &SweepMetrics{Registry: prometheus.NewRegistry()}

	m.DatasetsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vdjbench_datasets_total",
		Help: "Number of dataset sizes found under the dataset root",
	})
	m.DatasetsCompleted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "vdjbench_datasets_completed_total",
		Help: "Number of dataset sizes measured and checkpointed",
	})
	m.CurrentSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "vdjbench_last_completed_dataset_size",
		Help: "Dataset size of the most recently completed row",
	})
	m.SweepsFinished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "vdjbench_sweeps_finished_total",
		Help: "Sweeps finished, by outcome",
	}, []string{"status"})
	m.RepetitionSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "vdjbench_repetition_duration_seconds",
		Help:    "Elapsed time of individual timing repetitions",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 20),
	}, []string{"dataset_size"})
	m.MeanSeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vdjbench_mean_duration_seconds",
		Help: "Mean load time per dataset size",
	}, []string{"dataset_size"})
	m.AllocBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vdjbench_alloc_bytes",
		Help: "Bytes allocated by a single load, per dataset size",
	}, []string{"dataset_size"})
	m.PeakAllocBytes = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "vdjbench_peak_alloc_bytes",
		Help: "Largest single-site allocation of a single load, per dataset size",
	}, []string{"dataset_size"})

	m.Registry.MustRegister(
		m.DatasetsTotal,
		m.DatasetsCompleted,
		m.CurrentSize,
		m.SweepsFinished,
		m.RepetitionSeconds,
		m.MeanSeconds,
		m.AllocBytes,
		m.PeakAllocBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveTiming records the repetitions and mean time of one dataset size.
func (m *SweepMetrics) ObserveTiming(size int, samples []float64, mean float64) {
	label := strconv.Itoa(size)
	for _, s := range samples {
		m.RepetitionSeconds.WithLabelValues(label).Observe(s)
	}
	m.MeanSeconds.WithLabelValues(label).Set(mean)
}

// ObserveMemory records the allocation totals of one dataset size.
func (m *SweepMetrics) ObserveMemory(size int, alloc, peak int64) {
	label := strconv.Itoa(size)
	m.AllocBytes.WithLabelValues(label).Set(float64(alloc))
	m.PeakAllocBytes.WithLabelValues(label).Set(float64(peak))
}

// Completed marks a dataset size as checkpointed.
func (m *SweepMetrics) Completed(size int) {
	m.DatasetsCompleted.Inc()
	m.CurrentSize.Set(float64(size))
}

// Finished records the sweep outcome.
func (m *SweepMetrics) Finished(status string) {
	m.SweepsFinished.WithLabelValues(status).Inc()
}

// Handler exposes the registry over HTTP.
func (m *SweepMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// StartMetricsServer serves the sweep metrics on addr until the server fails.
func StartMetricsServer(addr string, m *SweepMetrics) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	LogInfo("Starting metrics server", "addr", addr)
	err := http.ListenAndServe(addr, mux)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
