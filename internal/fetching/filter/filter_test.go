package filter

import (
	"testing"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
)

func events() []*domain.Event {
	return []*domain.Event{
		{TxHash: "T1", Action: domain.ActionTransfer, From: "fetch1alice"},
		{TxHash: "T2", Action: domain.ActionRefund, From: "fetch1bob"},
		{TxHash: "T3", Action: domain.ActionPartialTransfer, From: "fetch1alice"},
		{TxHash: "T4", Action: domain.ActionCreate, From: "fetch1carol"},
	}
}

func hashes(evts []*domain.Event) []string {
	out := make([]string, len(evts))
	for i, e := range evts {
		out[i] = e.TxHash
	}
	return out
}

func TestApplyNoCriteria(t *testing.T) {
	got := Apply(events(), Criteria{})
	if len(got) != 4 {
		t.Errorf("Expected all events, got %v", hashes(got))
	}
}

func TestApplySingleAction(t *testing.T) {
	got := Apply(events(), Criteria{Actions: []domain.ActionType{domain.ActionTransfer}})
	if len(got) != 1 || got[0].TxHash != "T1" {
		t.Errorf("Expected [T1], got %v", hashes(got))
	}
}

func TestApplyMultipleActions(t *testing.T) {
	got := Apply(events(), Criteria{
		Actions: []domain.ActionType{domain.ActionTransfer, domain.ActionPartialTransfer},
	})
	if len(got) != 2 || got[0].TxHash != "T1" || got[1].TxHash != "T3" {
		t.Errorf("Expected [T1 T3], got %v", hashes(got))
	}
}

func TestApplyWallet(t *testing.T) {
	got := Apply(events(), Criteria{Wallet: "fetch1alice"})
	if len(got) != 2 || got[0].TxHash != "T1" || got[1].TxHash != "T3" {
		t.Errorf("Expected [T1 T3], got %v", hashes(got))
	}
}

func TestApplyActionAndWallet(t *testing.T) {
	got := Apply(events(), Criteria{
		Actions: []domain.ActionType{domain.ActionPartialTransfer},
		Wallet:  "fetch1alice",
	})
	if len(got) != 1 || got[0].TxHash != "T3" {
		t.Errorf("Expected [T3], got %v", hashes(got))
	}

	got = Apply(events(), Criteria{
		Actions: []domain.ActionType{domain.ActionRefund},
		Wallet:  "fetch1alice",
	})
	if len(got) != 0 {
		t.Errorf("Expected no matches, got %v", hashes(got))
	}
}
