package ws

import (
	"encoding/json"
	"fmt"

	"github.com/mcoot/colorclaim/internal/model"
)

// Envelope is the frame format in both directions: {"event": "...", "data": ...}
type Envelope struct {
	Event model.EventName `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Encode marshals an event and its payload into a frame
func Encode(event model.EventName, payload any) ([]byte, error) {
	_, frame, err := encode(event, payload)
	return frame, err
}

func encode(event model.EventName, payload any) (json.RawMessage, []byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s payload: %w", event, err)
	}
	frame, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		return nil, nil, fmt.Errorf("encode %s frame: %w", event, err)
	}
	return data, frame, nil
}

// Decode parses a frame. The payload is left raw for the receiver to decode.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("decode frame: %w", err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("decode frame: missing event name")
	}
	return env, nil
}
