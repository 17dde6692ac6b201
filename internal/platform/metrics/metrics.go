// Package metrics registers the Prometheus instruments for the application.
// Collectors are package-level and registered once at import time.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LedgerOperations counts ledger mutations by operation and outcome.
	LedgerOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mba_ledger_operations_total",
			Help: "Budget ledger mutations by operation (BLOCK, RELEASE, CONFIRM) and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	// ApprovalActions counts workflow steps by action and outcome.
	ApprovalActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mba_approval_actions_total",
			Help: "Transaction approval workflow actions by action and outcome.",
		},
		[]string{"action", "outcome"},
	)

	// Postings counts accounting posting attempts by outcome
	// (posted, idempotent, conflict, version_mismatch, invalid_state, error).
	Postings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mba_postings_total",
			Help: "Accounting posting attempts by outcome.",
		},
		[]string{"outcome"},
	)

	// HTTPRequestDuration observes request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mba_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route and status code.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)
