// Package provider implements gRPC endpoint providers.
//
// This package contains:
//   - Provider interface: core abstraction for tx-service endpoints
//   - GRPCProvider: gRPC implementation with TLS detection
//   - ProviderMonitor: health and rate tracking
package provider

import (
	"context"
	"time"

	"google.golang.org/grpc"
)

// Operation represents a gRPC operation to execute.
// Invoke wraps the typed client call so routing and monitoring stay generic.
type Operation struct {
	// Name identifies the operation (e.g., "GetTxsEvent")
	Name string

	// Cost is the quota cost for this operation (default 1)
	Cost int

	// Invoke executes the operation against the provider's connection.
	Invoke func(ctx context.Context, conn grpc.ClientConnInterface) (any, error)
}

// Provider defines the core interface for a tx-service endpoint.
type Provider interface {
	// GetName returns the provider identifier (e.g., "fetch-mainnet")
	GetName() string

	// GetHealth returns current health metrics
	GetHealth() HealthStatus

	// IsAvailable checks if the provider is healthy enough to use
	IsAvailable() bool

	// HasQuotaRemaining checks if the provider has not exceeded its rate limits
	HasQuotaRemaining() bool

	// Execute performs the operation with monitoring and error handling
	Execute(ctx context.Context, op Operation) (any, error)

	// Close cleans up resources
	Close() error
}

// HealthStatus represents the health state of a provider.
type HealthStatus struct {
	Available     bool
	Latency       time.Duration
	ErrorRate     float64
	LastSuccessAt time.Time
	LastFailureAt time.Time
	MonitorStats  *MonitorStats `json:"monitor_stats,omitempty"`
}
