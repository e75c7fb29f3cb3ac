package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// tradePairRe matches the leading trade-pair prefix of an event ID,
// e.g. "ATOM/USDC" in "ATOM/USDC12345".
var tradePairRe = regexp.MustCompile(`^([A-Za-z/]+)`)

// Event represents a single contract execution event extracted from a
// transaction log.
type Event struct {
	ID              string     `json:"id"`
	TxHash          string     `json:"tx_hash"`
	Action          ActionType `json:"action"`
	From            string     `json:"from_address"`
	To              string     `json:"to_address"`
	Amount          string     `json:"amount"`
	TradePair       string     `json:"trade_pair"`
	SellPrice       string     `json:"sell_price"`
	EscrowAddress   string     `json:"escrow_address"`
	RemainingAmount string     `json:"remaining_amount,omitempty"`
	PreferredAgent  string     `json:"preferred_agent,omitempty"`
	MatchOthers     bool       `json:"match_others"`
}

// ExtractTradePair returns the alphabetic/slash prefix of an event ID.
// The ID format is "<PAIR><sequence>", so the prefix identifies the market.
func ExtractTradePair(id string) string {
	m := tradePairRe.FindStringSubmatch(id)
	if m == nil {
		return ""
	}
	return m[1]
}

// String renders the event for logs and CLI output.
func (e *Event) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Id: %s\n", e.ID)
	fmt.Fprintf(&b, "Transaction Hash: %s\n", e.TxHash)
	fmt.Fprintf(&b, "Action: %s\n", e.Action)
	fmt.Fprintf(&b, "From Address: %s\n", e.From)
	fmt.Fprintf(&b, "To Address: %s\n", e.To)
	fmt.Fprintf(&b, "Amount: %s\n", e.Amount)
	fmt.Fprintf(&b, "Trade Pair: %s\n", e.TradePair)
	fmt.Fprintf(&b, "Sell Price: %s\n", e.SellPrice)
	fmt.Fprintf(&b, "Escrow Address: %s\n", e.EscrowAddress)
	fmt.Fprintf(&b, "Remaining Amount: %s\n", e.RemainingAmount)
	fmt.Fprintf(&b, "Preferred Agent: %s\n", e.PreferredAgent)
	fmt.Fprintf(&b, "Match Others: %t", e.MatchOthers)
	return b.String()
}
