// Package metrics exposes Prometheus instrumentation for the engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion metrics
	SignalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hawkline_signals_total",
			Help: "Total number of signals received",
		},
		[]string{"status"},
	)

	SignalsByKind = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hawkline_signals_by_kind_total",
			Help: "Total number of accepted signals by kind",
		},
		[]string{"kind"},
	)

	// Evaluation results
	CompositesEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hawkline_composites_emitted_total",
			Help: "Total number of composite signals emitted by correlation rules",
		},
		[]string{"pattern"},
	)

	AlertsTriggered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hawkline_alerts_triggered_total",
			Help: "Total number of triggered alerts",
		},
		[]string{"rule", "priority"},
	)

	// Buffer state
	HistorySize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "hawkline_history_size",
			Help: "Current number of buffered signals",
		},
		[]string{"buffer"},
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "hawkline_ingest_duration_seconds",
			Help:    "Duration of a full ingest evaluation in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)
)
