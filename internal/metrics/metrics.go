// Package metrics holds the bot's Prometheus collectors:
//
//	ladderbot_cycles_total{result}                  cycles by outcome (ok|error|panic)
//	ladderbot_cycle_duration_seconds                wall time of one cycle
//	ladderbot_orders_submitted_total{side,tier}     orders accepted by the venue
//	ladderbot_orders_rejected_total{side,reason}    entries skipped before or at the venue
//	ladderbot_orders_persisted_total{table}         resolved orders written to the store
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultPanic = "panic"

	ReasonMinNotional = "min_notional"
	ReasonVenue       = "venue"
	ReasonNoOrderID   = "no_order_id"
	ReasonPanic       = "panic"
)

type Metrics struct {
	registry *prometheus.Registry

	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	submitted     *prometheus.CounterVec
	rejected      *prometheus.CounterVec
	persisted     *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ladderbot_cycles_total",
				Help: "Trading cycles by result",
			},
			[]string{"result"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "ladderbot_cycle_duration_seconds",
				Help:    "Duration of one trading cycle",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		submitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ladderbot_orders_submitted_total",
				Help: "Orders accepted by the venue",
			},
			[]string{"side", "tier"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ladderbot_orders_rejected_total",
				Help: "Ledger entries that did not reach the venue",
			},
			[]string{"side", "reason"},
		),
		persisted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ladderbot_orders_persisted_total",
				Help: "Resolved orders written to the store",
			},
			[]string{"table"},
		),
	}
	m.registry.MustRegister(m.cycles, m.cycleDuration, m.submitted, m.rejected, m.persisted)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// The recorders below accept a nil receiver so callers can run without metrics.

func (m *Metrics) Cycle(result string, took time.Duration) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(result).Inc()
	m.cycleDuration.Observe(took.Seconds())
}

func (m *Metrics) Submitted(side, tier string) {
	if m == nil {
		return
	}
	m.submitted.WithLabelValues(side, tier).Inc()
}

func (m *Metrics) Rejected(side, reason string) {
	if m == nil {
		return
	}
	m.rejected.WithLabelValues(side, reason).Inc()
}

func (m *Metrics) Persisted(table string) {
	if m == nil {
		return
	}
	m.persisted.WithLabelValues(table).Inc()
}
