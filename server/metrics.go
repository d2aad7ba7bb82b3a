package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spektr-org/climadash/dataset"
)

const metricsNamespace = "climadash"

// Metrics holds the Prometheus collectors for the dashboard.
type Metrics struct {
	// RequestsTotal counts HTTP requests by route template and status code.
	RequestsTotal *prometheus.CounterVec

	// RequestDuration observes handler latency by route template.
	RequestDuration *prometheus.HistogramVec

	// FilteredRows observes how many rows each filtered request kept.
	FilteredRows prometheus.Histogram

	// ExportsTotal counts exports by format.
	ExportsTotal *prometheus.CounterVec

	// DatasetRows is the size of the snapshot in service.
	DatasetRows prometheus.Gauge

	// ReloadsTotal counts dataset loads by result ("ok", "error").
	ReloadsTotal *prometheus.CounterVec
}

// NewMetrics registers the collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by route and status",
			},
			[]string{"route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"route"},
		),
		FilteredRows: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "filtered_rows",
				Help:      "Rows remaining after filters were applied",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),
		ExportsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "exports_total",
				Help:      "Total exports served by format",
			},
			[]string{"format"},
		),
		DatasetRows: f.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "dataset_rows",
				Help:      "Rows in the dataset snapshot in service",
			},
		),
		ReloadsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "dataset_reloads_total",
				Help:      "Dataset load attempts by result",
			},
			[]string{"result"},
		),
	}
}

// ReloadHook records load outcomes; pass it to dataset.WithReloadHook.
func (m *Metrics) ReloadHook() dataset.ReloadHook {
	return func(t *dataset.Table, err error) {
		if err != nil {
			m.ReloadsTotal.WithLabelValues("error").Inc()
			return
		}
		m.ReloadsTotal.WithLabelValues("ok").Inc()
		m.DatasetRows.Set(float64(t.Len()))
	}
}
