// Package metrics exposes the engine's Prometheus instrumentation:
//
//	breaker_zones_total{event,dir}     – zone lifecycle events
//	breaker_entries_total{dir}         – entry orders placed
//	breaker_entry_failures_total       – rejected entry orders
//	breaker_partial_closes_total       – one-shot partial closes
//	breaker_stop_moves_total{stage}    – accepted stop modifications
//	breaker_equity                     – account equity snapshot (gauge)
//
// Registered against the default registry and served by promhttp from the
// run command.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/rustyeddy/breaker/market"
	"github.com/rustyeddy/breaker/zone"
)

var (
	zoneEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_zones_total",
			Help: "Zone lifecycle events",
		},
		[]string{"event", "dir"},
	)

	entries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_entries_total",
			Help: "Entry orders placed",
		},
		[]string{"dir"},
	)

	entryFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "breaker_entry_failures_total",
			Help: "Entry orders rejected by the gateway",
		},
	)

	partialCloses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "breaker_partial_closes_total",
			Help: "Partial closes executed",
		},
	)

	stopMoves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "breaker_stop_moves_total",
			Help: "Accepted stop modifications by lifecycle stage",
		},
		[]string{"stage"},
	)

	equity = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "breaker_equity",
			Help: "Account equity in account currency",
		},
	)
)

func init() {
	prometheus.MustRegister(zoneEvents, entries, entryFailures, partialCloses, stopMoves, equity)
}

func RecordEntry(dir market.Direction) { entries.WithLabelValues(dir.String()).Inc() }
func RecordEntryFailure()              { entryFailures.Inc() }
func RecordPartialClose()              { partialCloses.Inc() }
func RecordStopMove(stage string)      { stopMoves.WithLabelValues(stage).Inc() }
func SetEquity(v float64)              { equity.Set(v) }

// LifecycleObserver implements trade.Hooks by counting stop moves and
// partial closes.
type LifecycleObserver struct{}

func (LifecycleObserver) StopMoved(stage string) { RecordStopMove(stage) }
func (LifecycleObserver) PartialClosed()         { RecordPartialClose() }

// ZoneObserver implements zone.Notifier by counting lifecycle events.
type ZoneObserver struct{}

func (ZoneObserver) ZoneCreated(z zone.Zone) {
	zoneEvents.WithLabelValues("created", z.Direction.String()).Inc()
}

func (ZoneObserver) ZoneTouched(z zone.Zone) {
	zoneEvents.WithLabelValues("touched", z.Direction.String()).Inc()
}

func (ZoneObserver) ZoneInvalidated(z zone.Zone) {
	zoneEvents.WithLabelValues("invalidated", z.Direction.String()).Inc()
}
