// Package filter applies client-side event predicates.
package filter

import (
	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
)

// Criteria holds the predicates applied to fetched events.
// Zero values mean "match everything".
type Criteria struct {
	Actions []domain.ActionType // any-of; empty = all actions
	Wallet  string              // sender address; empty = all wallets
}

// Matches reports whether an event satisfies all criteria.
func (c Criteria) Matches(e *domain.Event) bool {
	if len(c.Actions) > 0 {
		found := false
		for _, a := range c.Actions {
			if e.Action == a {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	if c.Wallet != "" && e.From != c.Wallet {
		return false
	}

	return true
}

// Apply returns the events satisfying the criteria, preserving order.
func Apply(events []*domain.Event, c Criteria) []*domain.Event {
	if len(c.Actions) == 0 && c.Wallet == "" {
		return events
	}

	matched := make([]*domain.Event, 0, len(events))
	for _, e := range events {
		if c.Matches(e) {
			matched = append(matched, e)
		}
	}
	return matched
}
