package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/waghostel/MedicalDeviceRegulationAgent-sub005/types"
)

// healthMetrics holds Prometheus metrics for the health aggregator.
type healthMetrics struct {
	checkUp       *prometheus.GaugeVec
	probeDuration *prometheus.HistogramVec
}

func newHealthMetrics(reg prometheus.Registerer) *healthMetrics {
	return &healthMetrics{
		checkUp: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "health_check_up",
			Help: "Whether the named dependency check passed (1) or failed (0)",
		}, []string{"check"}),
		probeDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "health_check_duration_seconds",
			Help:    "Time taken by each dependency probe",
			Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"check"}),
	}
}

func (m *healthMetrics) observe(result types.CheckResult) {
	up := 0.0
	if result.Healthy {
		up = 1.0
	}
	m.checkUp.WithLabelValues(string(result.Name)).Set(up)
	m.probeDuration.WithLabelValues(string(result.Name)).Observe(result.Latency.Seconds())
}

// WithMetrics registers per-check Prometheus metrics on reg and has the
// service update them on every probe run.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(h *HealthService) {
		h.metrics = newHealthMetrics(reg)
	}
}
