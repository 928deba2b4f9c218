// Package metrics defines the Prometheus metric collectors used across the
// clustering pipeline and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the pipeline.
type Metrics struct {
	DocsVectorizedTotal prometheus.Counter
	IterationsTotal     prometheus.Counter
	AssignmentChanges   prometheus.Histogram
	ClusterSize         *prometheus.GaugeVec
	RunDuration         prometheus.Histogram
	RunsTotal           *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	m := &Metrics{
		DocsVectorizedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docs_vectorized_total",
				Help: "Total documents converted to weighted feature vectors.",
			},
		),
		IterationsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kmeans_iterations_total",
				Help: "Total assignment/update iterations executed.",
			},
		),
		AssignmentChanges: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kmeans_assignment_changes",
				Help:    "Documents whose cluster changed in one iteration.",
				Buckets: []float64{0, 1, 5, 10, 50, 100, 500, 1000, 10000},
			},
		),
		ClusterSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "kmeans_cluster_size",
				Help: "Number of documents assigned to each cluster.",
			},
			[]string{"cluster_id"},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "kmeans_run_duration_seconds",
				Help:    "Wall-clock duration of complete clustering runs.",
				Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 600},
			},
		),
		RunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kmeans_runs_total",
				Help: "Completed runs by terminal state (converged, iteration_limit, error).",
			},
			[]string{"state"},
		),
	}

	prometheus.MustRegister(
		m.DocsVectorizedTotal,
		m.IterationsTotal,
		m.AssignmentChanges,
		m.ClusterSize,
		m.RunDuration,
		m.RunsTotal,
	)

	return m
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
