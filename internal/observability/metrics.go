package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "rio_alert"

// Metrics holds the Prometheus counters, histograms, and gauges for the service.
type Metrics struct {
	// Provider metrics.
	ProviderRequests *prometheus.CounterVec   // labels: op={rivers,alert,shelters,forecast,update}, outcome={success,error}
	ProviderDuration *prometheus.HistogramVec // labels: op

	// Level update metrics.
	LevelUpdates     *prometheus.CounterVec // labels: alert_level={green,yellow,red}
	LevelEscalations prometheus.Counter
	PublishErrors    prometheus.Counter

	// Session gate metrics.
	GateTransitions *prometheus.CounterVec // labels: stage (the stage entered)
	ActiveLaunches  prometheus.Gauge
	ExpiredLaunches prometheus.Counter
	AuthAttempts    *prometheus.CounterVec // labels: action={register,login}, outcome={success,rejected,error}

	// Geocoding metrics.
	GeocodeRequests    *prometheus.CounterVec   // labels: method={forward,reverse}, outcome={success,error,empty}
	GeocodeCache       *prometheus.CounterVec   // labels: method={forward,reverse}, result={hit,miss}
	GeocodeAPIDuration *prometheus.HistogramVec // labels: method={forward,reverse}
	GeocodeEnabled     prometheus.Gauge
}

// NewMetrics creates and registers all service metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		ProviderRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "River data provider calls by operation and outcome.",
		}, []string{"op", "outcome"}),
		ProviderDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_duration_seconds",
			Help:      "River data provider call duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"op"}),
		LevelUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_updates_total",
			Help:      "Applied river level updates by resulting alert level.",
		}, []string{"alert_level"}),
		LevelEscalations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "level_escalations_total",
			Help:      "Level updates that moved a river to a more severe alert level.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Level updates that could not be published downstream.",
		}),
		GateTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gate_transitions_total",
			Help:      "Session gate transitions by the stage entered.",
		}, []string{"stage"}),
		ActiveLaunches: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_launches",
			Help:      "Launches currently held in memory.",
		}),
		ExpiredLaunches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_launches_total",
			Help:      "Launches removed by the idle sweep.",
		}),
		AuthAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Register and login attempts by outcome.",
		}, []string{"action", "outcome"}),
		GeocodeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_requests_total",
			Help:      "Geocoding API requests by method and outcome.",
		}, []string{"method", "outcome"}),
		GeocodeCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geocode_cache_total",
			Help:      "Geocoding cache lookups by method and result.",
		}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "geocode_api_duration_seconds",
			Help:      "Mapbox API request duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method"}),
		GeocodeEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "geocode_enabled",
			Help:      "1 when location geocoding is enabled, 0 otherwise.",
		}),
	}

	prometheus.MustRegister(
		m.ProviderRequests,
		m.ProviderDuration,
		m.LevelUpdates,
		m.LevelEscalations,
		m.PublishErrors,
		m.GateTransitions,
		m.ActiveLaunches,
		m.ExpiredLaunches,
		m.AuthAttempts,
		m.GeocodeRequests,
		m.GeocodeCache,
		m.GeocodeAPIDuration,
		m.GeocodeEnabled,
	)

	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		ProviderRequests:   prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "provider_requests_total"}, []string{"op", "outcome"}),
		ProviderDuration:   prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "provider_duration_seconds"}, []string{"op"}),
		LevelUpdates:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "level_updates_total"}, []string{"alert_level"}),
		LevelEscalations:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "level_escalations_total"}),
		PublishErrors:      prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "publish_errors_total"}),
		GateTransitions:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "gate_transitions_total"}, []string{"stage"}),
		ActiveLaunches:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "active_launches"}),
		ExpiredLaunches:    prometheus.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "expired_launches_total"}),
		AuthAttempts:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "auth_attempts_total"}, []string{"action", "outcome"}),
		GeocodeRequests:    prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_requests_total"}, []string{"method", "outcome"}),
		GeocodeCache:       prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: namespace, Name: "geocode_cache_total"}, []string{"method", "result"}),
		GeocodeAPIDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{Namespace: namespace, Name: "geocode_api_duration_seconds"}, []string{"method"}),
		GeocodeEnabled:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "geocode_enabled"}),
	}
}
