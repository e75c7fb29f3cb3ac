// Package cosmos implements a minimal client for the Cosmos SDK
// cosmos.tx.v1beta1.Service/GetTxsEvent RPC.
//
// Only the handful of fields this poller consumes are modeled; the
// messages are hand-maintained on the protobuf wire format instead of
// carrying the full generated cosmos-sdk proto tree. Unknown fields are
// skipped on decode.
package cosmos

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// PageRequest mirrors cosmos.base.query.v1beta1.PageRequest.
type PageRequest struct {
	Key        []byte // field 1
	Offset     uint64 // field 2
	Limit      uint64 // field 3
	CountTotal bool   // field 4
	Reverse    bool   // field 5
}

// PageResponse mirrors cosmos.base.query.v1beta1.PageResponse.
type PageResponse struct {
	NextKey []byte // field 1
	Total   uint64 // field 2
}

// Attribute is a single key/value pair of a tx log event.
type Attribute struct {
	Key   string // field 1
	Value string // field 2
}

// StringEvent is one typed event of a message log (e.g. "wasm").
type StringEvent struct {
	Type       string      // field 1
	Attributes []Attribute // field 2
}

// ABCIMessageLog is the structured log of one message in a transaction.
type ABCIMessageLog struct {
	MsgIndex uint32        // field 1
	Log      string        // field 2
	Events   []StringEvent // field 3
}

// TxResponse mirrors the consumed subset of cosmos.base.abci.v1beta1.TxResponse.
type TxResponse struct {
	Height    int64            // field 1
	TxHash    string           // field 2
	Code      uint32           // field 4
	RawLog    string           // field 6
	Logs      []ABCIMessageLog // field 7
	Timestamp string           // field 12
}

// GetTxsEventRequest mirrors cosmos.tx.v1beta1.GetTxsEventRequest.
type GetTxsEventRequest struct {
	Events     []string     // field 1
	Pagination *PageRequest // field 2
}

// GetTxsEventResponse mirrors the consumed subset of cosmos.tx.v1beta1.GetTxsEventResponse.
type GetTxsEventResponse struct {
	TxResponses []*TxResponse // field 2
	Pagination  *PageResponse // field 3
	Total       uint64        // field 4
}

// Marshal encodes the request in protobuf wire format.
func (m *GetTxsEventRequest) Marshal() ([]byte, error) {
	var b []byte
	for _, e := range m.Events {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, e)
	}
	if m.Pagination != nil {
		sub, err := m.Pagination.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	return b, nil
}

// Unmarshal decodes the request from protobuf wire format.
func (m *GetTxsEventRequest) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Events = append(m.Events, string(v))
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Pagination = new(PageRequest)
			if err := m.Pagination.Unmarshal(v); err != nil {
				return err
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// Marshal encodes the page request in protobuf wire format.
func (m *PageRequest) Marshal() ([]byte, error) {
	var b []byte
	if len(m.Key) > 0 {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Key)
	}
	if m.Offset != 0 {
		b = protowire.AppendTag(b, 2, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Offset)
	}
	if m.Limit != 0 {
		b = protowire.AppendTag(b, 3, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Limit)
	}
	if m.CountTotal {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	if m.Reverse {
		b = protowire.AppendTag(b, 5, protowire.VarintType)
		b = protowire.AppendVarint(b, 1)
	}
	return b, nil
}

// Unmarshal decodes the page request from protobuf wire format.
func (m *PageRequest) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Key = append([]byte(nil), v...)
			b = b[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Offset = v
			b = b[n:]
		case num == 3 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Limit = v
			b = b[n:]
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.CountTotal = v != 0
			b = b[n:]
		case num == 5 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Reverse = v != 0
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// Marshal encodes the response in protobuf wire format.
func (m *GetTxsEventResponse) Marshal() ([]byte, error) {
	var b []byte
	for _, tr := range m.TxResponses {
		sub, err := tr.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	if m.Pagination != nil {
		var sub []byte
		if len(m.Pagination.NextKey) > 0 {
			sub = protowire.AppendTag(sub, 1, protowire.BytesType)
			sub = protowire.AppendBytes(sub, m.Pagination.NextKey)
		}
		if m.Pagination.Total != 0 {
			sub = protowire.AppendTag(sub, 2, protowire.VarintType)
			sub = protowire.AppendVarint(sub, m.Pagination.Total)
		}
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	if m.Total != 0 {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Total)
	}
	return b, nil
}

// Unmarshal decodes the response from protobuf wire format.
func (m *GetTxsEventResponse) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			tr := new(TxResponse)
			if err := tr.Unmarshal(v); err != nil {
				return fmt.Errorf("tx_responses: %w", err)
			}
			m.TxResponses = append(m.TxResponses, tr)
			b = b[n:]
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Pagination = new(PageResponse)
			if err := m.Pagination.unmarshal(v); err != nil {
				return err
			}
			b = b[n:]
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Total = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func (m *PageResponse) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.NextKey = append([]byte(nil), v...)
			b = b[n:]
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Total = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// Marshal encodes the tx response in protobuf wire format.
func (m *TxResponse) Marshal() ([]byte, error) {
	var b []byte
	if m.Height != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Height))
	}
	if m.TxHash != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.TxHash)
	}
	if m.Code != 0 {
		b = protowire.AppendTag(b, 4, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.Code))
	}
	if m.RawLog != "" {
		b = protowire.AppendTag(b, 6, protowire.BytesType)
		b = protowire.AppendString(b, m.RawLog)
	}
	for _, l := range m.Logs {
		sub, err := l.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 7, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	if m.Timestamp != "" {
		b = protowire.AppendTag(b, 12, protowire.BytesType)
		b = protowire.AppendString(b, m.Timestamp)
	}
	return b, nil
}

// Unmarshal decodes the tx response from protobuf wire format.
func (m *TxResponse) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Height = int64(v)
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.TxHash = string(v)
			b = b[n:]
		case num == 4 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Code = uint32(v)
			b = b[n:]
		case num == 6 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.RawLog = string(v)
			b = b[n:]
		case num == 7 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			var l ABCIMessageLog
			if err := l.Unmarshal(v); err != nil {
				return fmt.Errorf("logs: %w", err)
			}
			m.Logs = append(m.Logs, l)
			b = b[n:]
		case num == 12 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Timestamp = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// Marshal encodes the message log in protobuf wire format.
func (m *ABCIMessageLog) Marshal() ([]byte, error) {
	var b []byte
	if m.MsgIndex != 0 {
		b = protowire.AppendTag(b, 1, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(m.MsgIndex))
	}
	if m.Log != "" {
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendString(b, m.Log)
	}
	for _, e := range m.Events {
		sub, err := e.Marshal()
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, 3, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	return b, nil
}

// Unmarshal decodes the message log from protobuf wire format.
func (m *ABCIMessageLog) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.MsgIndex = uint32(v)
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Log = string(v)
			b = b[n:]
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			var e StringEvent
			if err := e.Unmarshal(v); err != nil {
				return fmt.Errorf("events: %w", err)
			}
			m.Events = append(m.Events, e)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

// Marshal encodes the event in protobuf wire format.
func (m *StringEvent) Marshal() ([]byte, error) {
	var b []byte
	if m.Type != "" {
		b = protowire.AppendTag(b, 1, protowire.BytesType)
		b = protowire.AppendString(b, m.Type)
	}
	for _, a := range m.Attributes {
		var sub []byte
		if a.Key != "" {
			sub = protowire.AppendTag(sub, 1, protowire.BytesType)
			sub = protowire.AppendString(sub, a.Key)
		}
		if a.Value != "" {
			sub = protowire.AppendTag(sub, 2, protowire.BytesType)
			sub = protowire.AppendString(sub, a.Value)
		}
		b = protowire.AppendTag(b, 2, protowire.BytesType)
		b = protowire.AppendBytes(b, sub)
	}
	return b, nil
}

// Unmarshal decodes the event from protobuf wire format.
func (m *StringEvent) Unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Type = string(v)
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			var a Attribute
			if err := a.unmarshal(v); err != nil {
				return err
			}
			m.Attributes = append(m.Attributes, a)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}

func (m *Attribute) unmarshal(b []byte) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		switch {
		case num == 1 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Key = string(v)
			b = b[n:]
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			m.Value = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return protowire.ParseError(n)
			}
			b = b[n:]
		}
	}
	return nil
}
