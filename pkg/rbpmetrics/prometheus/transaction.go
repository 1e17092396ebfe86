// Package prometheus is the Prometheus-backed implementation of
// pkg/rbpmetrics's interfaces: promauto-registered Counter/Histogram/
// Gauge vectors, nil when metrics are disabled.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ast0815/ipbus-software/pkg/rbpmetrics"
)

// transactionMetrics is the Prometheus implementation of
// rbpmetrics.TransactionMetrics.
type transactionMetrics struct {
	ops           *prometheus.CounterVec
	opDuration    *prometheus.HistogramVec
	dispatches    prometheus.Counter
	dispatchWords prometheus.Histogram
	wouldBlocks   prometheus.Counter
}

// NewTransactionMetrics creates a Prometheus-backed TransactionMetrics.
//
// Returns nil if metrics are not enabled (rbpmetrics.InitRegistry not
// called with enabled=true), letting callers skip every RecordOp call
// with a single nil check.
func NewTransactionMetrics() rbpmetrics.TransactionMetrics {
	if !rbpmetrics.IsEnabled() {
		return nil
	}
	reg := rbpmetrics.GetRegistry()

	return &transactionMetrics{
		ops: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbphal_transaction_total",
				Help: "Total number of completed transactions by opcode and reply info code",
			},
			[]string{"opcode", "info_code"},
		),
		opDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "rbphal_transaction_duration_milliseconds",
				Help: "Duration of a transaction from Stage to resolved reply",
				Buckets: []float64{
					0.1, 0.5, 1, 5, 10, 50, 100, 500, 1000,
				},
			},
			[]string{"opcode"},
		),
		dispatches: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "rbphal_dispatch_total",
				Help: "Total number of packet flushes sent to the target",
			},
		),
		dispatchWords: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Name: "rbphal_dispatch_words",
				Help: "Distribution of word counts sent per dispatch",
				Buckets: []float64{
					1, 2, 4, 8, 16, 64, 256, 1024, 4096,
				},
			},
		),
		wouldBlocks: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "rbphal_stage_would_block_total",
				Help: "Total number of Stage calls rejected because the send buffer is full",
			},
		),
	}
}

func (m *transactionMetrics) RecordOp(opcode, infoCode string, duration time.Duration) {
	m.ops.WithLabelValues(opcode, infoCode).Inc()
	m.opDuration.WithLabelValues(opcode).Observe(float64(duration.Microseconds()) / 1000)
}

func (m *transactionMetrics) RecordDispatch(words int) {
	m.dispatches.Inc()
	m.dispatchWords.Observe(float64(words))
}

func (m *transactionMetrics) RecordWouldBlock() {
	m.wouldBlocks.Inc()
}
