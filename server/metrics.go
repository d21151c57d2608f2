package server

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"google.golang.org/grpc/codes"
)

// Metrics holds the Prometheus collectors of the model service on a
// private registry.
type Metrics struct {
	registry *prometheus.Registry

	ops       *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	modelTime prometheus.Gauge
}

// NewMetrics builds the collector set and registers it together with the
// standard process and Go runtime collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		ops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "longshore",
				Subsystem: "model",
				Name:      "ops_total",
				Help:      "Total number of model operations dispatched.",
			},
			[]string{"op", "status"},
		),

		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "longshore",
				Subsystem: "model",
				Name:      "op_duration_seconds",
				Help:      "Duration of model operation dispatches.",
				Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
			},
			[]string{"op"},
		),

		modelTime: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "longshore",
				Subsystem: "model",
				Name:      "time",
				Help:      "Current model clock value, in model time units.",
			},
		),
	}

	m.registry.MustRegister(
		m.ops,
		m.duration,
		m.modelTime,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)

	return m
}

// Handler returns an HTTP handler exposing the registered collectors.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observe(op string, code codes.Code, d time.Duration) {
	m.ops.WithLabelValues(op, code.String()).Inc()
	m.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) setModelTime(t float64) {
	m.modelTime.Set(t)
}
