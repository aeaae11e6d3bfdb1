package httpapi

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"
)

// Protobuf bodies are google.protobuf.Struct messages carrying the same
// fields as the JSON bodies; both directions go through the JSON shape.

// structInto decodes a Struct into dst (a pointer to a request type).
func structInto(s *structpb.Struct, dst any) error {
	raw, err := json.Marshal(s.AsMap())
	if err != nil {
		return fmt.Errorf("struct to json: %w", err)
	}
	return json.Unmarshal(raw, dst)
}

// toStruct encodes a response value as a Struct. Values that do not encode
// to a JSON object (e.g. the record list) are wrapped under "items".
func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("json marshal: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, fmt.Errorf("json unmarshal: %w", err)
	}

	m, ok := generic.(map[string]any)
	if !ok {
		m = map[string]any{"items": generic}
	}
	return structpb.NewStruct(m)
}
