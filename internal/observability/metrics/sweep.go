package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type SweepMetrics struct {
	registry *prometheus.Registry

	sweepTotal         *prometheus.CounterVec
	sweepDuration      *prometheus.HistogramVec
	sweepInFlight      prometheus.Gauge
	obligationsCreated *prometheus.CounterVec
	obligationsExpired *prometheus.CounterVec
	notificationsTotal *prometheus.CounterVec
}

func NewSweepMetrics(service string) *SweepMetrics {
	registry := prometheus.NewRegistry()

	sweepTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bzr",
			Subsystem: "sweep",
			Name:      "runs_total",
			Help:      "Total deadline sweeps by trigger and status.",
		},
		[]string{"service", "trigger", "status"},
	)
	sweepDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "bzr",
			Subsystem: "sweep",
			Name:      "duration_seconds",
			Help:      "Sweep duration in seconds by trigger.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "trigger"},
	)
	sweepInFlight := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "bzr",
			Subsystem: "sweep",
			Name:      "in_flight",
			Help:      "Number of sweeps currently running.",
			ConstLabels: prometheus.Labels{
				"service": service,
			},
		},
	)
	obligationsCreated := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bzr",
			Subsystem: "obligations",
			Name:      "created_total",
			Help:      "Total legal obligations derived from source records.",
		},
		[]string{"service"},
	)
	obligationsExpired := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bzr",
			Subsystem: "obligations",
			Name:      "expired_total",
			Help:      "Total obligations transitioned to expired.",
		},
		[]string{"service"},
	)
	notificationsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "bzr",
			Subsystem: "notifications",
			Name:      "emails_total",
			Help:      "Total reminder emails by delivery status.",
		},
		[]string{"service", "status"},
	)

	registry.MustRegister(
		sweepTotal,
		sweepDuration,
		sweepInFlight,
		obligationsCreated,
		obligationsExpired,
		notificationsTotal,
	)

	return &SweepMetrics{
		registry:           registry,
		sweepTotal:         sweepTotal,
		sweepDuration:      sweepDuration,
		sweepInFlight:      sweepInFlight,
		obligationsCreated: obligationsCreated,
		obligationsExpired: obligationsExpired,
		notificationsTotal: notificationsTotal,
	}
}

func (m *SweepMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *SweepMetrics) StartSweep() {
	m.sweepInFlight.Inc()
}

func (m *SweepMetrics) FinishSweep(service, trigger string, duration time.Duration, err error) {
	m.sweepInFlight.Dec()

	status := "success"
	if err != nil {
		status = "error"
	}

	m.sweepTotal.WithLabelValues(service, trigger, status).Inc()
	m.sweepDuration.WithLabelValues(service, trigger).Observe(duration.Seconds())
}

func (m *SweepMetrics) RecordSyncOutcome(service string, created, expired int) {
	if created > 0 {
		m.obligationsCreated.WithLabelValues(service).Add(float64(created))
	}
	if expired > 0 {
		m.obligationsExpired.WithLabelValues(service).Add(float64(expired))
	}
}

func (m *SweepMetrics) RecordNotifications(service string, sent, failed int) {
	if sent > 0 {
		m.notificationsTotal.WithLabelValues(service, "sent").Add(float64(sent))
	}
	if failed > 0 {
		m.notificationsTotal.WithLabelValues(service, "failed").Add(float64(failed))
	}
}
