// Package metrics exposes Prometheus instrumentation for the poller.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchTotal counts fetch cycles per contract
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_fetch_total",
			Help: "Total number of fetch cycles per contract",
		},
		[]string{"contract"},
	)

	// FetchErrors counts failed fetch cycles per contract
	FetchErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_fetch_errors_total",
			Help: "Total number of failed fetch cycles per contract",
		},
		[]string{"contract"},
	)

	// FetchDuration tracks fetch cycle latency
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_fetch_duration_seconds",
			Help:    "Fetch cycle duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"contract"},
	)

	// EventsMatched counts events that passed filtering, by action
	EventsMatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_events_matched_total",
			Help: "Total events matched after filtering, by contract and action",
		},
		[]string{"contract", "action"},
	)

	// EventsDiscarded counts events dropped as already processed
	EventsDiscarded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_events_discarded_total",
			Help: "Total events discarded as already processed",
		},
		[]string{"contract"},
	)

	// TransactionsScanned counts transactions returned by the chain query
	TransactionsScanned = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_transactions_scanned_total",
			Help: "Total transactions scanned per contract",
		},
		[]string{"contract"},
	)

	// ProcessedSetSize tracks the size of the processed-event set
	ProcessedSetSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "poller_processed_set_size",
			Help: "Number of tx hashes in the processed set per contract",
		},
		[]string{"contract"},
	)

	// GRPCRequestDuration tracks provider call latency
	GRPCRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "poller_grpc_request_duration_seconds",
			Help:    "gRPC request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "operation"},
	)

	// GRPCRequestErrors counts provider call failures by status code
	GRPCRequestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poller_grpc_request_errors_total",
			Help: "Total gRPC request errors by provider and status code",
		},
		[]string{"provider", "code"},
	)

	// ProviderHealthy reports provider availability (1 healthy, 0 not)
	ProviderHealthy = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "poller_provider_healthy",
			Help: "Whether a provider is currently healthy",
		},
		[]string{"provider"},
	)

	// DBConnectionPoolUsage tracks database pool utilization percent
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poller_db_connection_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)

	// LastSuccessfulFetch records the unix time of the last good cycle
	LastSuccessfulFetch = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "poller_last_successful_fetch_timestamp",
			Help: "Unix timestamp of the last successful fetch per contract",
		},
		[]string{"contract"},
	)
)
