package bootseq

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for a boot sequence.
type Metrics struct {
	ActionDuration *prometheus.HistogramVec // Duration of start/stop actions by component and phase
	Outcomes       *prometheus.CounterVec   // Published results by phase and kind
	InFlight       *prometheus.GaugeVec     // Actions currently running by phase
}

// NewMetrics creates and registers the metrics of a boot sequence.
// The registerer parameter allows flexible registration (e.g., global registry, test registry).
// The sequence name is attached as a const label so several sequences can share a registry.
func NewMetrics(reg prometheus.Registerer, sequence string) *Metrics {
	labels := prometheus.Labels{"sequence": sequence}

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:        "bootseq_action_duration_seconds",
		Help:        "Duration of component start and stop actions",
		ConstLabels: labels,
		Buckets:     prometheus.ExponentialBuckets(0.001, 4, 10),
	}, []string{"component", "phase"})

	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name:        "bootseq_results_total",
		Help:        "Total number of published component results",
		ConstLabels: labels,
	}, []string{"phase", "kind"})

	inFlight := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name:        "bootseq_actions_in_flight",
		Help:        "Number of component actions currently running",
		ConstLabels: labels,
	}, []string{"phase"})

	reg.MustRegister(duration)
	reg.MustRegister(outcomes)
	reg.MustRegister(inFlight)

	return &Metrics{
		ActionDuration: duration,
		Outcomes:       outcomes,
		InFlight:       inFlight,
	}
}

// actionStarted records an action entering the running state. It is safe on a nil receiver.
func (m *Metrics) actionStarted(ph Phase) {
	if m == nil {
		return
	}
	m.InFlight.WithLabelValues(ph.String()).Inc()
}

// actionDone records a finished action and its duration. It is safe on a nil receiver.
func (m *Metrics) actionDone(name string, ph Phase, d time.Duration) {
	if m == nil {
		return
	}
	m.InFlight.WithLabelValues(ph.String()).Dec()
	m.ActionDuration.WithLabelValues(name, ph.String()).Observe(d.Seconds())
}

// published counts a result of the given kind. It is safe on a nil receiver.
func (m *Metrics) published(ph Phase, kind string) {
	if m == nil {
		return
	}
	m.Outcomes.WithLabelValues(ph.String(), kind).Inc()
}
