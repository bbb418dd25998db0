package party

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors HTTPHandler records into.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "party",
				Subsystem: "graphql",
				Name:      "operations_total",
				Help:      "Total number of GraphQL operations",
			},
			[]string{"status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "party",
				Subsystem: "graphql",
				Name:      "operation_duration_seconds",
				Help:      "GraphQL operation duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"status"},
		),
	}
	reg.MustRegister(m.Operations, m.Duration)
	return m
}

func (m *Metrics) observe(status string, elapsed time.Duration) {
	m.Operations.WithLabelValues(status).Inc()
	m.Duration.WithLabelValues(status).Observe(elapsed.Seconds())
}
