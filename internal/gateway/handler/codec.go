package handler

import (
	"encoding/json"
	"fmt"

	"connectrpc.com/connect"
)

// jsonCodec replaces Connect's protobuf JSON codec so procedures can carry
// plain Go structs.
type jsonCodec struct{}

var _ connect.Codec = jsonCodec{}

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	raw, ok := v.(*json.RawMessage)
	if !ok {
		return json.Unmarshal(data, v)
	}
	if !json.Valid(data) {
		return fmt.Errorf("invalid json body")
	}
	*raw = append((*raw)[:0], data...)
	return nil
}
