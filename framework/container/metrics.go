package container

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/km-arc/go-ioc/framework/reflection"
)

// Resolution outcomes recorded by Metrics.
const (
	OutcomeResolved         = "resolved"
	OutcomeUnregistered     = "unregistered"
	OutcomeActivationFailed = "activation_failed"
)

// Metrics holds the container's Prometheus collectors. A nil *Metrics
// records nothing.
type Metrics struct {
	resolutions   *prometheus.CounterVec
	registrations prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		resolutions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "ioc",
			Subsystem: "container",
			Name:      "resolutions_total",
			Help:      "Resolve calls by abstraction and outcome.",
		}, []string{"abstraction", "outcome"}),
		registrations: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "ioc",
			Subsystem: "container",
			Name:      "registrations",
			Help:      "Number of abstractions currently bound.",
		}),
	}
	for _, c := range []prometheus.Collector{m.resolutions, m.registrations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Resolutions returns the counter for abstraction and outcome. The
// abstraction label is the package-qualified key.
func (m *Metrics) Resolutions(abstraction reflection.Descriptor, outcome string) prometheus.Counter {
	return m.resolutions.WithLabelValues(abstraction.Key(), outcome)
}

// Registrations returns the registrations gauge.
func (m *Metrics) Registrations() prometheus.Gauge { return m.registrations }

func (m *Metrics) observe(abstraction reflection.Descriptor, outcome string) {
	if m == nil {
		return
	}
	m.Resolutions(abstraction, outcome).Inc()
}

func (m *Metrics) setRegistrations(n int) {
	if m == nil {
		return
	}
	m.registrations.Set(float64(n))
}
