package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "snippetvault_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// SnippetOperations counts persistence operations by kind and outcome (success|error).
	SnippetOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snippetvault_snippet_operations_total",
			Help: "Total number of snippet persistence operations",
		},
		[]string{"operation", "result"},
	)

	// AuditPrunedRows records audit log rows removed by the retention job.
	AuditPrunedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "snippetvault_audit_pruned_rows_total",
			Help: "Total number of audit log rows pruned by retention",
		},
	)
)
