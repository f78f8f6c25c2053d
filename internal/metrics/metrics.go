// Package metrics provides Prometheus metrics for folio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CounterOperations counts visitor counter calls by operation and the mode that served them.
	CounterOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "visitor_counter_operations_total",
			Help:      "Total number of visitor counter operations",
		},
		[]string{"operation", "mode"},
	)

	// StoreFailures counts key-value store errors absorbed by the in-process fallback.
	StoreFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "store_failures_total",
			Help:      "Total number of store failures recovered by the memory fallback",
		},
		[]string{"operation"},
	)

	// StoreUp is 1 while the last store probe succeeded.
	StoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "folio",
			Name:      "store_up",
			Help:      "Whether the visitor counter store answered the last probe",
		},
	)

	// CalendarFetches counts contribution calendar fetches by result.
	CalendarFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "folio",
			Name:      "calendar_fetch_total",
			Help:      "Total number of contribution calendar fetches",
		},
		[]string{"result"},
	)

	// CalendarFetchDuration measures upstream GraphQL round trips.
	CalendarFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "folio",
			Name:      "calendar_fetch_duration_seconds",
			Help:      "Duration of contribution calendar fetches in seconds",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
