package auth

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/weisyn/bcdb/internal/core/infrastructure/metrics"
)

const outcomeOK = "ok"
const outcomeCanceled = "canceled"

type verifierMetrics struct {
	outcomes *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func newVerifierMetrics(reg prometheus.Registerer) (*verifierMetrics, error) {
	m := &verifierMetrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Subsystem: "auth",
				Name:      "verifications_total",
				Help:      "Request authentications by outcome (ok or error kind)",
			},
			[]string{"outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Subsystem: "auth",
				Name:      "verification_duration_seconds",
				Help:      "Request authentication latency including registry lookup",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
			},
			[]string{"outcome"},
		),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.outcomes, err = metrics.RegisterOrExisting(reg, m.outcomes); err != nil {
		return nil, err
	}
	if m.duration, err = metrics.RegisterOrExisting(reg, m.duration); err != nil {
		return nil, err
	}
	return m, nil
}
