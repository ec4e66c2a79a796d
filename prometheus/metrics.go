// Package prometheus records metrics for the index and the acquisition
// pipeline.
package prometheus

import (
	"time"

	"github.com/fwojciec/docsearch"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors shared by the instrumented services.
type Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	warnings   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsearch_operations_total",
				Help: "Total number of operations by component, operation and error code",
			},
			[]string{"component", "op", "code"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "docsearch_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~41s
			},
			[]string{"component", "op"},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docsearch_acquisition_warnings_total",
				Help: "Total number of non-fatal acquisition problems by operation",
			},
			[]string{"op"},
		),
	}
	for _, c := range []prometheus.Collector{m.operations, m.duration, m.warnings} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(component, op string, begin time.Time, err error) {
	code := docsearch.ErrorCode(err)
	if code == "" {
		code = "ok"
	}
	m.operations.WithLabelValues(component, op, code).Inc()
	m.duration.WithLabelValues(component, op).Observe(time.Since(begin).Seconds())
}
