package domain

import "fmt"

// ActionType identifies the contract action that produced an event.
type ActionType string

const (
	ActionRefund          ActionType = "refund"
	ActionTransfer        ActionType = "transfer"
	ActionPartialTransfer ActionType = "partial_transfer"
	ActionCreate          ActionType = "create"
)

// AllActionTypes lists every known action.
var AllActionTypes = []ActionType{
	ActionRefund,
	ActionTransfer,
	ActionPartialTransfer,
	ActionCreate,
}

// ParseActionType validates a raw action string.
func ParseActionType(s string) (ActionType, error) {
	for _, a := range AllActionTypes {
		if s == string(a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action type %q", s)
}

func (a ActionType) String() string {
	return string(a)
}
