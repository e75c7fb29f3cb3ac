// Package parse flattens wasm execution logs into typed events.
package parse

import (
	"fmt"
	"strconv"

	"github.com/codewithdpk/fetch-network-event-poller/internal/core/domain"
	"github.com/codewithdpk/fetch-network-event-poller/internal/infra/chain/cosmos"
)

const wasmEventType = "wasm"

// Contract-address roles. The first _contract_address attribute of a wasm
// event belongs to the token contract, any later one to the escrow contract.
const (
	KeyTokenContract  = "cw20_contract_address"
	KeyEscrowContract = "escrow_contract_address"
)

// AttributeSet is the flattened key/value view of one wasm event,
// tagged with the enclosing transaction hash.
type AttributeSet struct {
	TxHash string
	attrs  map[string]string
}

// Get returns the value for a logical key. Repeated keys are stored with
// numeric suffixes, so the lookup falls back to the first suffixed variant.
func (s *AttributeSet) Get(key string) string {
	if v, ok := s.attrs[key]; ok {
		return v
	}
	return s.attrs[key+"1"]
}

// Has reports whether the logical key is present.
func (s *AttributeSet) Has(key string) bool {
	if _, ok := s.attrs[key]; ok {
		return true
	}
	_, ok := s.attrs[key+"1"]
	return ok
}

// Len returns the number of stored attributes.
func (s *AttributeSet) Len() int {
	return len(s.attrs)
}

// put stores a value, suffixing duplicate keys with 1, 2, ...
func (s *AttributeSet) put(key, value string) {
	if _, taken := s.attrs[key]; !taken {
		s.attrs[key] = value
		return
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s%d", key, i)
		if _, taken := s.attrs[candidate]; !taken {
			s.attrs[candidate] = value
			return
		}
	}
}

// FlattenWasmEvents extracts one AttributeSet per wasm event from the
// structured logs of a transaction.
func FlattenWasmEvents(tx *cosmos.TxResponse) []*AttributeSet {
	var sets []*AttributeSet

	for _, log := range tx.Logs {
		for _, ev := range log.Events {
			if ev.Type != wasmEventType {
				continue
			}

			set := &AttributeSet{
				TxHash: tx.TxHash,
				attrs:  make(map[string]string, len(ev.Attributes)),
			}

			contractSeen := false
			for _, attr := range ev.Attributes {
				if attr.Key == "_contract_address" {
					if !contractSeen {
						set.put(KeyTokenContract, attr.Value)
						contractSeen = true
					} else {
						set.put(KeyEscrowContract, attr.Value)
					}
					continue
				}
				set.put(attr.Key, attr.Value)
			}

			sets = append(sets, set)
		}
	}

	return sets
}

// BuildEvent converts a flattened wasm event into a domain Event.
// The action is carried through unvalidated; filtering decides relevance.
func BuildEvent(set *AttributeSet) *domain.Event {
	id := set.Get("id")

	matchOthers := true
	if raw := set.Get("match_others"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			matchOthers = v
		}
	}

	return &domain.Event{
		ID:              id,
		TxHash:          set.TxHash,
		Action:          domain.ActionType(set.Get("action")),
		From:            set.Get("from"),
		To:              set.Get("to"),
		Amount:          set.Get("amount"),
		TradePair:       domain.ExtractTradePair(id),
		SellPrice:       set.Get("sell_price"),
		EscrowAddress:   set.Get(KeyEscrowContract),
		RemainingAmount: set.Get("remaining_amount"),
		PreferredAgent:  set.Get("preferred_agent"),
		MatchOthers:     matchOthers,
	}
}
