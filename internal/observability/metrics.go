package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the collector.
type Metrics struct {
	PollsTotal          prometheus.Counter
	PollFailures        *prometheus.CounterVec // labels: kind={transport,parse}
	PollDuration        prometheus.Histogram
	ConsecutiveFailures prometheus.Gauge
	TruncationRepairs   prometheus.Counter

	// Record assembly metrics.
	RecordsEmitted    *prometheus.CounterVec // labels: group
	UnknownUnits      *prometheus.CounterVec // labels: units
	RainCounterResets prometheus.Counter

	// Sink metrics.
	RecordsPublished prometheus.Counter
	RecordsDropped   prometheus.Counter
	CollectorRunning prometheus.Gauge
}

// NewMetrics creates and registers all collector metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		PollsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orion",
			Name:      "polls_total",
			Help:      "Total station poll attempts.",
		}),
		PollFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orion",
			Name:      "poll_failures_total",
			Help:      "Failed poll attempts by failure kind.",
		}, []string{"kind"}),
		PollDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "orion",
			Name:      "poll_duration_seconds",
			Help:      "Duration of one fetch-and-parse cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 4},
		}),
		ConsecutiveFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orion",
			Name:      "consecutive_poll_failures",
			Help:      "Current run of failed polls, 0 while healthy.",
		}),
		TruncationRepairs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orion",
			Name:      "truncation_repairs_total",
			Help:      "Station documents repaired after a truncated transfer.",
		}),
		RecordsEmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orion",
			Name:      "records_emitted_total",
			Help:      "Loop records assembled, by measurement group.",
		}, []string{"group"}),
		UnknownUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orion",
			Name:      "unknown_units_total",
			Help:      "Records emitted without a unit system, by reported base units.",
		}, []string{"units"}),
		RainCounterResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orion",
			Name:      "rain_counter_resets_total",
			Help:      "Rain counter resets observed on the station.",
		}),
		RecordsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orion",
			Name:      "records_published_total",
			Help:      "Records delivered to the sink.",
		}),
		RecordsDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "orion",
			Name:      "records_dropped_total",
			Help:      "Records dropped after exhausting publish retries.",
		}),
		CollectorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "orion",
			Name:      "collector_running",
			Help:      "1 when the collector pipeline is active, 0 when shut down.",
		}),
	}

	prometheus.MustRegister(
		m.PollsTotal,
		m.PollFailures,
		m.PollDuration,
		m.ConsecutiveFailures,
		m.TruncationRepairs,
		m.RecordsEmitted,
		m.UnknownUnits,
		m.RainCounterResets,
		m.RecordsPublished,
		m.RecordsDropped,
		m.CollectorRunning,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		PollsTotal:          prometheus.NewCounter(prometheus.CounterOpts{Namespace: "orion", Name: "polls_total"}),
		PollFailures:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "orion", Name: "poll_failures_total"}, []string{"kind"}),
		PollDuration:        prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "orion", Name: "poll_duration_seconds"}),
		ConsecutiveFailures: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "orion", Name: "consecutive_poll_failures"}),
		TruncationRepairs:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "orion", Name: "truncation_repairs_total"}),
		RecordsEmitted:      prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "orion", Name: "records_emitted_total"}, []string{"group"}),
		UnknownUnits:        prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "orion", Name: "unknown_units_total"}, []string{"units"}),
		RainCounterResets:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "orion", Name: "rain_counter_resets_total"}),
		RecordsPublished:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: "orion", Name: "records_published_total"}),
		RecordsDropped:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: "orion", Name: "records_dropped_total"}),
		CollectorRunning:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "orion", Name: "collector_running"}),
	}
}
