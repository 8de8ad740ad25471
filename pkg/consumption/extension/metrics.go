package extension

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iota-uz/iota-mq/pkg/consumption"
)

type consumptionMetrics struct {
	processedTotal *prometheus.CounterVec
	idleTotal      *prometheus.CounterVec
	interrupted    *prometheus.CounterVec
}

var metricsSingleton = sync.OnceValue(func() *consumptionMetrics {
	return &consumptionMetrics{
		processedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mq",
			Subsystem: "consumption",
			Name:      "processed_total",
			Help:      "Total number of processed messages by status.",
		}, []string{"queue", "status"}),
		idleTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mq",
			Subsystem: "consumption",
			Name:      "idle_total",
			Help:      "Total number of receive attempts that timed out.",
		}, []string{"queue"}),
		interrupted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mq",
			Subsystem: "consumption",
			Name:      "interrupted_total",
			Help:      "Total number of finished consumption runs.",
		}, []string{"failed"}),
	}
})

// Metrics counts processed messages and idle cycles.
type Metrics struct {
	consumption.NoopExtension

	m *consumptionMetrics
}

func NewMetrics() *Metrics {
	return &Metrics{m: metricsSingleton()}
}

func (e *Metrics) OnPostReceived(_ context.Context, c *consumption.Context) {
	e.m.processedTotal.WithLabelValues(c.Queue().Name(), string(c.Status())).Inc()
}

func (e *Metrics) OnIdle(_ context.Context, c *consumption.Context) {
	e.m.idleTotal.WithLabelValues(c.Queue().Name()).Inc()
}

func (e *Metrics) OnInterrupted(_ context.Context, c *consumption.Context) {
	failed := "false"
	if c.Err() != nil {
		failed = "true"
	}
	e.m.interrupted.WithLabelValues(failed).Inc()
}
