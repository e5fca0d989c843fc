// Package metrics defines the prometheus collectors exported by the engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "k8zenv"

// Metrics groups the engine collectors. A nil *Metrics records nothing.
type Metrics struct {
	stepsTotal         *prometheus.CounterVec
	stepDuration       *prometheus.HistogramVec
	buildsTotal        *prometheus.CounterVec
	chartsTotal        *prometheus.CounterVec
	chartDuration      *prometheus.HistogramVec
	adoptionsTotal     *prometheus.CounterVec
	serviceReportTotal *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stepsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "transaction",
				Name:      "steps_total",
				Help:      "Total number of transaction steps by step and result",
			},
			[]string{"step", "result"},
		),
		stepDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "transaction",
				Name:      "step_duration_seconds",
				Help:      "Duration of transaction steps in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 12), // 1s to ~34min
			},
			[]string{"step"},
		),
		buildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "build",
				Name:      "images_total",
				Help:      "Total number of image builds by outcome",
			},
			[]string{"outcome"},
		),
		chartsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "addons",
				Name:      "chart_apply_total",
				Help:      "Total number of chart applications by chart, action and result",
			},
			[]string{"chart", "action", "result"},
		),
		chartDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "addons",
				Name:      "chart_apply_duration_seconds",
				Help:      "Duration of chart applications in seconds",
				Buckets:   prometheus.ExponentialBuckets(1, 2, 11), // 1s to ~17min
			},
			[]string{"chart"},
		),
		adoptionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "addons",
				Name:      "adoptions_total",
				Help:      "Total number of ownership adoption attempts by resource and outcome",
			},
			[]string{"resource", "outcome"},
		),
		serviceReportTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "environment",
				Name:      "service_reports_total",
				Help:      "Total number of per-service progress reports by kind, action and outcome",
			},
			[]string{"kind", "action", "outcome"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.stepsTotal,
			m.stepDuration,
			m.buildsTotal,
			m.chartsTotal,
			m.chartDuration,
			m.adoptionsTotal,
			m.serviceReportTotal,
		)
	}

	return m
}

// RecordStep records the result and duration of a transaction step.
func (m *Metrics) RecordStep(step, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.stepsTotal.WithLabelValues(step, result).Inc()
	m.stepDuration.WithLabelValues(step).Observe(duration.Seconds())
}

// RecordBuild records one image build outcome (built, skipped, aborted, failed).
func (m *Metrics) RecordBuild(outcome string) {
	if m == nil {
		return
	}
	m.buildsTotal.WithLabelValues(outcome).Inc()
}

// RecordChart records a chart application.
func (m *Metrics) RecordChart(chart, action, result string, duration time.Duration) {
	if m == nil {
		return
	}
	m.chartsTotal.WithLabelValues(chart, action, result).Inc()
	m.chartDuration.WithLabelValues(chart).Observe(duration.Seconds())
}

// RecordAdoption records an ownership adoption outcome (adopted, skipped, failed).
func (m *Metrics) RecordAdoption(resource, outcome string) {
	if m == nil {
		return
	}
	m.adoptionsTotal.WithLabelValues(resource, outcome).Inc()
}

// RecordServiceReport records a per-service progress report.
func (m *Metrics) RecordServiceReport(kind, action, outcome string) {
	if m == nil {
		return
	}
	m.serviceReportTotal.WithLabelValues(kind, action, outcome).Inc()
}
