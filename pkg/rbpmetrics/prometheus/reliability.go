package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/ast0815/ipbus-software/pkg/rbpmetrics"
)

// reliabilityMetrics is the Prometheus implementation of
// rbpmetrics.ReliabilityMetrics.
type reliabilityMetrics struct {
	windowOccupancy  prometheus.Gauge
	statusProbes     *prometheus.CounterVec
	resends          prometheus.Counter
	desynchronized   prometheus.Counter
}

// NewReliabilityMetrics creates a Prometheus-backed ReliabilityMetrics.
//
// Returns nil if metrics are not enabled.
func NewReliabilityMetrics() rbpmetrics.ReliabilityMetrics {
	if !rbpmetrics.IsEnabled() {
		return nil
	}
	reg := rbpmetrics.GetRegistry()

	return &reliabilityMetrics{
		windowOccupancy: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Name: "rbphal_window_occupancy",
				Help: "Number of unacknowledged packets currently held in the reliability window",
			},
		),
		statusProbes: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "rbphal_status_probe_total",
				Help: "Total number of STATUS probes issued during reliability recovery, by outcome",
			},
			[]string{"outcome"},
		),
		resends: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "rbphal_resend_total",
				Help: "Total number of RESEND requests issued for lost or nacked packets",
			},
		),
		desynchronized: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "rbphal_desynchronized_total",
				Help: "Total number of times reliability recovery exhausted its attempt budget",
			},
		),
	}
}

func (m *reliabilityMetrics) SetWindowOccupancy(count int) {
	m.windowOccupancy.Set(float64(count))
}

func (m *reliabilityMetrics) RecordStatusProbe(outcome string) {
	m.statusProbes.WithLabelValues(outcome).Inc()
}

func (m *reliabilityMetrics) RecordResend() {
	m.resends.Inc()
}

func (m *reliabilityMetrics) RecordDesynchronized() {
	m.desynchronized.Inc()
}
