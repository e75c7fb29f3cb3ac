// Package health tracks per-contract poll health and serves HTTP probes.
package health

import (
	"time"
)

// Status summarizes a contract's polling health.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// ContractHealth holds the observed state of one contract's poll loop.
type ContractHealth struct {
	Contract         string        `json:"contract"`
	Status           Status        `json:"status"`
	LastSuccessAt    time.Time     `json:"last_success_at,omitempty"`
	LastErrorAt      time.Time     `json:"last_error_at,omitempty"`
	LastError        string        `json:"last_error,omitempty"`
	ConsecutiveFails int           `json:"consecutive_fails"`
	CyclesCompleted  uint64        `json:"cycles_completed"`
	EventsEmitted    uint64        `json:"events_emitted"`
	LastCycleTime    time.Duration `json:"last_cycle_time_ns"`
}

// Summary is the aggregate view served on /health.
type Summary struct {
	Status    Status                     `json:"status"`
	Uptime    string                     `json:"uptime"`
	Contracts map[string]*ContractHealth `json:"contracts,omitempty"`
}
