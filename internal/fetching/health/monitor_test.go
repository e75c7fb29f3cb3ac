package health

import (
	"errors"
	"testing"
	"time"
)

func TestMonitorStatusTransitions(t *testing.T) {
	m := NewMonitor()
	err := errors.New("query failed")

	m.RecordSuccess("c1", 5, 100*time.Millisecond)
	if got := m.Snapshot()["c1"].Status; got != StatusHealthy {
		t.Errorf("After success: %s", got)
	}

	for i := 0; i < degradedAfterFails; i++ {
		m.RecordFailure("c1", err)
	}
	if got := m.Snapshot()["c1"].Status; got != StatusDegraded {
		t.Errorf("After %d fails: %s", degradedAfterFails, got)
	}

	for i := degradedAfterFails; i < unhealthyAfterFails; i++ {
		m.RecordFailure("c1", err)
	}
	if got := m.Snapshot()["c1"].Status; got != StatusUnhealthy {
		t.Errorf("After %d fails: %s", unhealthyAfterFails, got)
	}

	// One good cycle resets the streak.
	m.RecordSuccess("c1", 0, time.Millisecond)
	h := m.Snapshot()["c1"]
	if h.Status != StatusHealthy || h.ConsecutiveFails != 0 {
		t.Errorf("After recovery: %+v", h)
	}
}

func TestMonitorCounters(t *testing.T) {
	m := NewMonitor()
	m.RecordSuccess("c1", 3, time.Millisecond)
	m.RecordSuccess("c1", 2, time.Millisecond)

	h := m.Snapshot()["c1"]
	if h.CyclesCompleted != 2 || h.EventsEmitted != 5 {
		t.Errorf("Counters: %+v", h)
	}
}

func TestSummaryWorstContractWins(t *testing.T) {
	m := NewMonitor()
	m.RecordSuccess("good", 1, time.Millisecond)
	for i := 0; i < unhealthyAfterFails; i++ {
		m.RecordFailure("bad", errors.New("down"))
	}

	s := m.Summary(true)
	if s.Status != StatusUnhealthy {
		t.Errorf("Summary status = %s", s.Status)
	}
	if len(s.Contracts) != 2 {
		t.Errorf("Expected 2 contracts, got %d", len(s.Contracts))
	}

	if got := m.Summary(false); got.Contracts != nil {
		t.Error("Compact summary should omit contract detail")
	}
}

func TestSummaryNoContracts(t *testing.T) {
	if got := NewMonitor().Summary(false).Status; got != StatusUnknown {
		t.Errorf("Empty monitor summary = %s", got)
	}
}
