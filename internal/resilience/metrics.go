package resilience

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes breaker state and transition counts.
type Metrics struct {
	State       *prometheus.GaugeVec
	Transitions *prometheus.CounterVec
}

// NewMetrics registers the breaker collectors on reg, reusing any already registered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		State: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "breaker_state",
			Help:      "Current breaker state: 0=closed, 1=open, 2=half-open.",
		}, []string{"breaker"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "breaker_transition_total",
			Help:      "Count of breaker state transitions.",
		}, []string{"breaker", "from", "to"}),
	}
	var are prometheus.AlreadyRegisteredError
	if err := reg.Register(m.State); errors.As(err, &are) {
		m.State = are.ExistingCollector.(*prometheus.GaugeVec)
	}
	if err := reg.Register(m.Transitions); errors.As(err, &are) {
		m.Transitions = are.ExistingCollector.(*prometheus.CounterVec)
	}
	return m
}

func (m *Metrics) setState(name string, s State) {
	if m == nil {
		return
	}
	m.State.WithLabelValues(name).Set(float64(s))
}

func (m *Metrics) transition(name string, from, to State) {
	if m == nil {
		return
	}
	m.setState(name, to)
	m.Transitions.WithLabelValues(name, from.String(), to.String()).Inc()
}
