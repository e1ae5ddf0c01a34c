package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics holds the Prometheus metrics of one run. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	items           *prometheus.CounterVec
	tours           *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	downloadedBytes prometheus.Counter
	mirroredBytes   prometheus.Counter
	tourDuration    prometheus.Histogram
}

// NewMetrics creates the run metrics on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		items: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tour_sync_items_total",
				Help: "Colors, scenes, floor plans and media processed, by outcome",
			},
			[]string{"kind", "outcome"},
		),
		tours: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tour_sync_tours_total",
				Help: "Tours processed, by outcome",
			},
			[]string{"outcome"},
		),
		requestLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "tour_sync_request_duration_seconds",
				Help:    "Latency of remote API calls",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),
		downloadedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tour_sync_downloaded_bytes_total",
				Help: "Bytes written by tour downloads",
			},
		),
		mirroredBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "tour_sync_mirrored_bytes_total",
				Help: "Bytes copied to the object storage mirror",
			},
		),
		tourDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "tour_sync_tour_duration_seconds",
				Help:    "Wall time spent on one tour",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
}

// Registry exposes the registry for pushing or testing.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// RecordItem counts one processed item. A non-nil err counts as a failure.
func (m *Metrics) RecordItem(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	m.items.WithLabelValues(kind, outcome).Inc()
}

// RecordTour counts a finished tour and its duration.
func (m *Metrics) RecordTour(success bool, d time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.tours.WithLabelValues(outcome).Inc()
	m.tourDuration.Observe(d.Seconds())
}

// ObserveRequest records the latency of a remote call.
func (m *Metrics) ObserveRequest(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestLatency.WithLabelValues(operation).Observe(d.Seconds())
}

// AddDownloadedBytes adds to the download byte counter.
func (m *Metrics) AddDownloadedBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.downloadedBytes.Add(float64(n))
}

// AddMirroredBytes adds to the mirror byte counter.
func (m *Metrics) AddMirroredBytes(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.mirroredBytes.Add(float64(n))
}

// Push sends the run metrics to a Prometheus Pushgateway.
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil {
		return nil
	}
	return push.New(url, job).Gatherer(m.registry).PushContext(ctx)
}
