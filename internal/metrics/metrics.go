// Package metrics exposes Prometheus instruments for the tournament service.
//
// A Metrics value owns its registry so tests can build as many as they like without
// colliding on the global default registerer.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "domino"

// Metrics holds the collectors the service updates.
type Metrics struct {
	Registry *prometheus.Registry

	roundsGenerated  *prometheus.CounterVec
	scoreSaves       *prometheus.CounterVec
	adjustments      prometheus.Counter
	failures         *prometheus.CounterVec
	recomputeSeconds prometheus.Histogram
	playersRanked    prometheus.Gauge
}

// New builds the collectors and registers them, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		roundsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_generated_total",
			Help:      "Round seatings generated, by round number.",
		}, []string{"round"}),
		scoreSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "score_saves_total",
			Help:      "Table scores saved, by mode (totals or players).",
		}, []string{"mode"}),
		adjustments: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "adjustments_total",
			Help:      "Manual point adjustments applied.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operation_failures_total",
			Help:      "Failed operations, by operation and error kind.",
		}, []string{"operation", "kind"}),
		recomputeSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ranking_recompute_seconds",
			Help:      "Time spent rebuilding the ranking.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		}),
		playersRanked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "players_ranked",
			Help:      "Players in the latest ranking.",
		}),
	}

	m.Registry.MustRegister(
		m.roundsGenerated,
		m.scoreSaves,
		m.adjustments,
		m.failures,
		m.recomputeSeconds,
		m.playersRanked,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// RoundGenerated counts a generated round.
func (m *Metrics) RoundGenerated(round int) {
	if m == nil {
		return
	}
	m.roundsGenerated.WithLabelValues(strconv.Itoa(round)).Inc()
}

// ScoreSaved counts a score save; mode is "totals" or "players".
func (m *Metrics) ScoreSaved(mode string) {
	if m == nil {
		return
	}
	m.scoreSaves.WithLabelValues(mode).Inc()
}

// AdjustmentApplied counts a ledger entry.
func (m *Metrics) AdjustmentApplied() {
	if m == nil {
		return
	}
	m.adjustments.Inc()
}

// Failed counts a failed operation.
func (m *Metrics) Failed(operation, kind string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(operation, kind).Inc()
}

// Recomputed records a ranking rebuild over n players.
func (m *Metrics) Recomputed(d time.Duration, n int) {
	if m == nil {
		return
	}
	m.recomputeSeconds.Observe(d.Seconds())
	m.playersRanked.Set(float64(n))
}
