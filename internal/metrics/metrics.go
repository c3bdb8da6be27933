// Package metrics exposes retrieval counters and durations to Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records retrieval attempts. It satisfies retrieval.Recorder.
type Metrics struct {
	attemptsTotal   *prometheus.CounterVec
	attemptSeconds  *prometheus.HistogramVec
	rejectionsTotal *prometheus.CounterVec
	heightMeters    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gnssir_attempts_total",
				Help: "Total number of retrieval attempts by outcome.",
			},
			[]string{"band", "outcome"},
		),
		attemptSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gnssir_attempt_duration_seconds",
				Help:    "Retrieval attempt duration in seconds.",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
			},
			[]string{"band"},
		),
		rejectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gnssir_qc_rejections_total",
				Help: "Total number of failed quality checks by reason.",
			},
			[]string{"band", "reason"},
		),
		heightMeters: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "gnssir_reflector_height_meters",
				Help:    "Accepted reflector heights in metres.",
				Buckets: prometheus.LinearBuckets(0.5, 0.5, 16),
			},
			[]string{"band"},
		),
	}

	reg.MustRegister(m.attemptsTotal, m.attemptSeconds, m.rejectionsTotal, m.heightMeters)
	return m
}

func (m *Metrics) ObserveAttempt(band, outcome string, elapsed time.Duration) {
	m.attemptsTotal.WithLabelValues(band, outcome).Inc()
	m.attemptSeconds.WithLabelValues(band).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveRejection(band, reason string) {
	m.rejectionsTotal.WithLabelValues(band, reason).Inc()
}

func (m *Metrics) ObserveHeight(band string, rh float64) {
	m.heightMeters.WithLabelValues(band).Observe(rh)
}

// Handler returns the Prometheus metrics HTTP handler for the gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
