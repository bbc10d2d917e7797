// Package metrics exposes fill and playback counters to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records service-level measurements.  A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	fills         *prometheus.CounterVec
	fillDuration  *prometheus.HistogramVec
	seated        prometheus.Counter
	unseated      prometheus.Counter
	violations    *prometheus.CounterVec
	fillWarnings  prometheus.Counter
	playback      *prometheus.CounterVec
	activePlayers prometheus.Gauge
}

// NewPrometheus registers the collectors on reg (the default registerer
// when nil) under namespace ("classroom" when empty).
func NewPrometheus(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if namespace == "" {
		namespace = "classroom"
	}
	m := &Metrics{
		fills: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "seating",
			Name:      "fills_total",
			Help:      "Completed fill operations by strategy, policy and validity.",
		}, []string{"strategy", "policy", "valid"}),
		fillDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "seating",
			Name:      "fill_duration_seconds",
			Help:      "Time spent computing and storing one fill.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 1},
		}, []string{"strategy"}),
		seated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "seating",
			Name:      "students_seated_total",
			Help:      "Students that received a seat.",
		}),
		unseated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "seating",
			Name:      "students_unseated_total",
			Help:      "Students left without a seat.",
		}),
		violations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "seating",
			Name:      "constraint_violations_total",
			Help:      "Rows or groups breaking the active rule after a fill.",
		}, []string{"kind"}),
		fillWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "seating",
			Name:      "fill_warnings_total",
			Help:      "Non-fatal warnings collected during fills.",
		}),
		playback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "reveal",
			Name:      "events_total",
			Help:      "Playback transitions by event type.",
		}, []string{"event"}),
		activePlayers: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "reveal",
			Name:      "active_players",
			Help:      "Reveal players currently playing.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.fills, m.fillDuration, m.seated, m.unseated, m.violations, m.fillWarnings, m.playback, m.activePlayers,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// FillObserved records one finished fill.
func (m *Metrics) FillObserved(strategy, policy string, valid bool, seated, unseated, warnings int, took time.Duration) {
	if m == nil {
		return
	}
	m.fills.WithLabelValues(strategy, policy, strconv.FormatBool(valid)).Inc()
	m.fillDuration.WithLabelValues(strategy).Observe(took.Seconds())
	m.seated.Add(float64(seated))
	m.unseated.Add(float64(unseated))
	m.fillWarnings.Add(float64(warnings))
}

// ViolationsObserved adds n violations of kind (gender or group).
func (m *Metrics) ViolationsObserved(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.violations.WithLabelValues(kind).Add(float64(n))
}

// PlaybackEvent counts one reveal transition and tracks active players.
func (m *Metrics) PlaybackEvent(event string) {
	if m == nil {
		return
	}
	m.playback.WithLabelValues(event).Inc()
	switch event {
	case "start":
		m.activePlayers.Inc()
	case "stop", "complete":
		m.activePlayers.Dec()
	}
}
