package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/Rohan-R-Raikar/LiveShoppingCart-RealTime/internal/usecase"
)

const namespace = "shop"

// DomainMetrics records authorization decisions and cart transitions.
type DomainMetrics struct {
	decisions   *prometheus.CounterVec
	transitions *prometheus.CounterVec
}

// NewDomainMetrics registers the domain collectors with reg. A nil reg uses
// the default registerer.
func NewDomainMetrics(reg prometheus.Registerer) (*DomainMetrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	decisions, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "authz",
		Name:      "decisions_total",
		Help:      "Authorization decisions partitioned by check and outcome.",
	}, []string{"check", "decision"})
	if err != nil {
		return nil, err
	}

	transitions, err := registerCounterVec(reg, prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "cart",
		Name:      "transitions_total",
		Help:      "Cart mutations partitioned by action and outcome.",
	}, []string{"action", "outcome"})
	if err != nil {
		return nil, err
	}

	return &DomainMetrics{decisions: decisions, transitions: transitions}, nil
}

func (m *DomainMetrics) ObserveDecision(check, decision string) {
	m.decisions.WithLabelValues(check, decision).Inc()
}

func (m *DomainMetrics) ObserveTransition(action, outcome string) {
	m.transitions.WithLabelValues(action, outcome).Inc()
}

func registerCounterVec(reg prometheus.Registerer, opts prometheus.CounterOpts, labels []string) (*prometheus.CounterVec, error) {
	vec := prometheus.NewCounterVec(opts, labels)
	if err := reg.Register(vec); err != nil {
		if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("existing %s collector has unexpected type %T", opts.Name, already.ExistingCollector)
		}
		return nil, fmt.Errorf("register %s collector: %w", opts.Name, err)
	}
	return vec, nil
}

var (
	_ usecase.AuthorizationMetrics = (*DomainMetrics)(nil)
	_ usecase.CartMetrics          = (*DomainMetrics)(nil)
)
