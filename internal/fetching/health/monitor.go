package health

import (
	"sync"
	"time"
)

// Thresholds for degrading a contract's status.
const (
	degradedAfterFails  = 3
	unhealthyAfterFails = 10
)

// Monitor aggregates poll results across contracts.
type Monitor struct {
	mu        sync.RWMutex
	startedAt time.Time
	contracts map[string]*ContractHealth
}

// NewMonitor creates an empty health monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		startedAt: time.Now(),
		contracts: make(map[string]*ContractHealth),
	}
}

func (m *Monitor) contract(name string) *ContractHealth {
	h, ok := m.contracts[name]
	if !ok {
		h = &ContractHealth{Contract: name, Status: StatusUnknown}
		m.contracts[name] = h
	}
	return h
}

// RecordSuccess notes a completed poll cycle.
func (m *Monitor) RecordSuccess(contract string, events int, took time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.contract(contract)
	h.Status = StatusHealthy
	h.LastSuccessAt = time.Now()
	h.ConsecutiveFails = 0
	h.CyclesCompleted++
	h.EventsEmitted += uint64(events)
	h.LastCycleTime = took
}

// RecordFailure notes a failed poll cycle.
func (m *Monitor) RecordFailure(contract string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	h := m.contract(contract)
	h.LastErrorAt = time.Now()
	h.LastError = err.Error()
	h.ConsecutiveFails++

	switch {
	case h.ConsecutiveFails >= unhealthyAfterFails:
		h.Status = StatusUnhealthy
	case h.ConsecutiveFails >= degradedAfterFails:
		h.Status = StatusDegraded
	}
}

// Snapshot returns a copy of all contract states.
func (m *Monitor) Snapshot() map[string]*ContractHealth {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]*ContractHealth, len(m.contracts))
	for name, h := range m.contracts {
		copied := *h
		out[name] = &copied
	}
	return out
}

// Summary rolls the contract states up into one overall status.
// The worst contract wins.
func (m *Monitor) Summary(detailed bool) Summary {
	snapshot := m.Snapshot()

	overall := StatusHealthy
	for _, h := range snapshot {
		switch h.Status {
		case StatusUnhealthy:
			overall = StatusUnhealthy
		case StatusDegraded:
			if overall == StatusHealthy || overall == StatusUnknown {
				overall = StatusDegraded
			}
		case StatusUnknown:
			if overall == StatusHealthy {
				overall = StatusUnknown
			}
		}
	}
	if len(snapshot) == 0 {
		overall = StatusUnknown
	}

	s := Summary{
		Status: overall,
		Uptime: time.Since(m.startedAt).Round(time.Second).String(),
	}
	if detailed {
		s.Contracts = snapshot
	}
	return s
}
