package progressv1connect

import "encoding/json"

// JSONCodec replaces connect's protobuf JSON codec so that plain Go structs
// can be used as messages.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Marshal(msg any) ([]byte, error) { return json.Marshal(msg) }

func (JSONCodec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}
