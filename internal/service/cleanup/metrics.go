package cleanup

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts cleanup activity for the /metrics endpoint.
type Metrics struct {
	Actions       *prometheus.CounterVec
	Failures      prometheus.Counter
	Notifications *prometheus.CounterVec
}

// NewMetrics registers the cleanup counters with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "customer_cleanup_actions_total",
			Help: "Cleanup actions taken, by action type and mode",
		}, []string{"action", "mode"}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "customer_cleanup_failures_total",
			Help: "Live cleanup operations that failed",
		}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "customer_cleanup_notifications_total",
			Help: "Deletion warning emails, by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) recordAction(action, mode string) {
	if m != nil {
		m.Actions.WithLabelValues(action, mode).Inc()
	}
}

func (m *Metrics) recordFailure() {
	if m != nil {
		m.Failures.Inc()
	}
}

func (m *Metrics) recordNotification(outcome string) {
	if m != nil {
		m.Notifications.WithLabelValues(outcome).Inc()
	}
}
