package dbal

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	sendTotal   *prometheus.CounterVec
	claimTotal  *prometheus.CounterVec
	ackTotal    *prometheus.CounterVec
	rejectTotal *prometheus.CounterVec
	retryTotal  *prometheus.CounterVec

	receiveLatency *prometheus.HistogramVec
}

var metricsSingleton = sync.OnceValue(func() *metrics {
	return &metrics{
		sendTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mq",
			Name:      "send_total",
			Help:      "Total number of messages inserted by producers.",
		}, []string{"table", "queue"}),
		claimTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mq",
			Name:      "claim_total",
			Help:      "Total number of claim attempts by result (hit/miss/contended).",
		}, []string{"table", "queue", "result"}),
		ackTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mq",
			Name:      "ack_total",
			Help:      "Total number of acknowledged messages.",
		}, []string{"table", "queue"}),
		rejectTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mq",
			Name:      "reject_total",
			Help:      "Total number of rejected messages.",
		}, []string{"table", "queue", "requeue"}),
		retryTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mq",
			Name:      "transient_retry_total",
			Help:      "Total number of statements repeated after a transient store error.",
		}, []string{"table", "operation"}),
		receiveLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mq",
			Name:      "receive_latency_seconds",
			Help:      "Time spent inside Receive, by result.",
			Buckets: []float64{
				0.001, 0.005, 0.01, 0.05,
				0.1, 0.5, 1, 2, 5, 10, 30,
			},
		}, []string{"table", "queue", "result"}),
	}
})

func getMetrics() *metrics {
	return metricsSingleton()
}
