package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	LookupsTotal       *prometheus.CounterVec
	LookupDuration     prometheus.Histogram
	RefreshCycles      *prometheus.CounterVec
	RefreshDuration    prometheus.Histogram
	NotificationsTotal *prometheus.CounterVec
	TrackedFlights     prometheus.Gauge
	ErrorsCount        *prometheus.CounterVec
}

// NewMetrics creates new prometheus metrics registered on reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flight_lookups_total",
			Help:      "The total number of upstream flight lookups by result",
		}, []string{"result"}),
		LookupDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flight_lookup_duration_seconds",
			Help:      "Time taken by upstream flight lookups",
			Buckets:   prometheus.DefBuckets,
		}),
		RefreshCycles: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_cycles_total",
			Help:      "The total number of refresh cycles by outcome",
		}, []string{"outcome"}),
		RefreshDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_cycle_duration_seconds",
			Help:      "Time taken by a full refresh cycle",
			Buckets:   prometheus.DefBuckets,
		}),
		NotificationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "The total number of notification intents by kind",
		}, []string{"kind"}),
		TrackedFlights: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_flights",
			Help:      "The number of currently tracked flights",
		}),
		ErrorsCount: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
	}
}

// NewNopMetrics returns metrics registered on a private registry
func NewNopMetrics() *Metrics {
	return NewMetrics("test", prometheus.NewRegistry())
}
