// Package metrics exposes prometheus collectors for the relay.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "presence",
		Name:      "active_connections",
		Help:      "Live websocket connections.",
	})

	Admissions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "presence",
		Name:      "admissions_total",
		Help:      "Connection attempts by outcome.",
	}, []string{"outcome"})

	SignalEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "presence",
		Name:      "signal_events_total",
		Help:      "Routed client events by kind.",
	}, []string{"event"})

	Deliveries = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "presence",
		Name:      "signal_deliveries_total",
		Help:      "Per-connection deliveries of routed events.",
	})
)
