package telegram

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics are the bot's Prometheus collectors on a private registry.
type Metrics struct {
	Registry *prometheus.Registry

	Updates        *prometheus.CounterVec
	Solves         *prometheus.CounterVec
	SolveDuration  prometheus.Histogram
	StepsRevealed  prometheus.Counter
	ActiveSessions prometheus.Gauge
	PollErrors     prometheus.Counter
}

// NewMetrics registers the bot collectors plus the Go runtime and process
// collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Updates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mathstep",
			Subsystem: "bot",
			Name:      "updates_total",
			Help:      "Telegram updates handled, by kind.",
		}, []string{"kind"}),
		Solves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mathstep",
			Subsystem: "bot",
			Name:      "solves_total",
			Help:      "Problem submissions, by outcome.",
		}, []string{"outcome"}),
		SolveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mathstep",
			Subsystem: "bot",
			Name:      "solve_duration_seconds",
			Help:      "Model round trip for one submission.",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		}),
		StepsRevealed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mathstep",
			Subsystem: "bot",
			Name:      "steps_revealed_total",
			Help:      "Solution steps revealed.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mathstep",
			Subsystem: "bot",
			Name:      "active_sessions",
			Help:      "Chats with a live session.",
		}),
		PollErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mathstep",
			Subsystem: "bot",
			Name:      "poll_errors_total",
			Help:      "Failed getUpdates calls.",
		}),
	}
	reg.MustRegister(
		m.Updates, m.Solves, m.SolveDuration, m.StepsRevealed, m.ActiveSessions, m.PollErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
