// Package hub is a per-session websocket hub built on the channel-based
// fan-out pattern: one goroutine owns the client set, each client has its
// own read and write pumps, and inbound frames are dispatched to a handler.
package hub

import (
	"encoding/json"
	"fmt"
)

// Message is one outbound text frame.
type Message struct {
	Data []byte
}

// Envelope is the JSON frame exchanged with the browser:
//
//	{"type": "speak", "data": {...}}
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Encode builds the frame for a typed payload. A nil payload omits data.
func Encode(typ string, payload any) ([]byte, error) {
	env := Envelope{Type: typ}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("hub: encode %s: %w", typ, err)
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// Decode parses a frame. The payload stays raw for the caller to decode
// by type.
func Decode(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("hub: decode frame: %w", err)
	}
	if env.Type == "" {
		return Envelope{}, fmt.Errorf("hub: frame has no type")
	}
	return env, nil
}

// Payload decodes the envelope data into v.
func (e Envelope) Payload(v any) error {
	if len(e.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Data, v); err != nil {
		return fmt.Errorf("hub: decode %s payload: %w", e.Type, err)
	}
	return nil
}
