package cosmos

import "fmt"

// wireMessage is implemented by all hand-maintained wire types.
type wireMessage interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// txCodec is a gRPC codec for the hand-maintained wire messages.
// It reports the standard "proto" content-subtype so the server treats
// payloads as regular protobuf.
type txCodec struct{}

func (txCodec) Name() string { return "proto" }

func (txCodec) Marshal(v any) ([]byte, error) {
	m, ok := v.(wireMessage)
	if !ok {
		return nil, fmt.Errorf("cosmos codec: cannot marshal %T", v)
	}
	return m.Marshal()
}

func (txCodec) Unmarshal(data []byte, v any) error {
	m, ok := v.(wireMessage)
	if !ok {
		return fmt.Errorf("cosmos codec: cannot unmarshal into %T", v)
	}
	return m.Unmarshal(data)
}
