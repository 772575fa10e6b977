package monitor

import "github.com/prometheus/client_golang/prometheus"

const metricsNamespace = "price_tracker"

// Metrics are the sweep counters exported to Prometheus.
type Metrics struct {
	Sweeps               *prometheus.CounterVec
	SweepsRejected       *prometheus.CounterVec
	ItemsChecked         prometheus.Counter
	PriceDrops           *prometheus.CounterVec
	ItemFailures         *prometheus.CounterVec
	StoreWriteFailures   prometheus.Counter
	NotificationFailures prometheus.Counter
	SweepDuration        prometheus.Histogram
	LastSweep            prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Sweeps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sweeps_total",
			Help:      "Sweeps run, by trigger and result.",
		}, []string{"trigger", "result"}),
		SweepsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "sweeps_rejected_total",
			Help:      "Sweeps not started because another sweep was running.",
		}, []string{"trigger"}),
		ItemsChecked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "items_checked_total",
			Help:      "Alerts attempted across all sweeps.",
		}),
		PriceDrops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "price_drops_total",
			Help:      "Prices found at or below target.",
		}, []string{"platform"}),
		ItemFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "item_failures_total",
			Help:      "Alerts whose price could not be determined, by reason.",
		}, []string{"platform", "reason"}),
		StoreWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "store_write_failures_total",
			Help:      "Extracted prices that could not be persisted.",
		}),
		NotificationFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "notification_failures_total",
			Help:      "Price drop notifications that failed.",
		}),
		SweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "sweep_duration_seconds",
			Help:      "Wall time of completed sweeps.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 14),
		}),
		LastSweep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_sweep_timestamp_seconds",
			Help:      "Unix time the last sweep completed.",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Sweeps,
			m.SweepsRejected,
			m.ItemsChecked,
			m.PriceDrops,
			m.ItemFailures,
			m.StoreWriteFailures,
			m.NotificationFailures,
			m.SweepDuration,
			m.LastSweep,
		)
	}
	return m
}
