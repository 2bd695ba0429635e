// ABOUTME: Synth control protocol message type definitions
// ABOUTME: Defines the JSON envelope and payloads exchanged with the control server
package protocol

import (
	"encoding/json"
	"fmt"
)

// ProtocolVersion is the version of the control protocol
const ProtocolVersion = 1

// Message types
const (
	TypeServerHello = "server/hello"

	TypeTimeGet  = "time/get"
	TypeTimeSet  = "time/set"
	TypeTimeSeek = "time/seek"
	TypeTime     = "time"

	TypeShapeToggle = "shape/toggle"
	TypeShapeGet    = "shape/get"
	TypeShape       = "shape"

	TypeWindow = "window"

	TypeError = "error"
)

// Message is the top-level wrapper for all protocol messages.
// Responses echo the ID of the request they answer.
type Message struct {
	Type    string      `json:"type"`
	ID      string      `json:"id,omitempty"`
	Payload interface{} `json:"payload,omitempty"`
}

// ServerHello is sent by the server as soon as a connection is accepted
type ServerHello struct {
	ServerID   string `json:"server_id"`
	Name       string `json:"name"`
	Version    int    `json:"version"`
	Software   string `json:"software"`
	SampleRate int    `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

// TimeSet moves the playback clock to an absolute time in seconds
type TimeSet struct {
	Time float64 `json:"time"`
}

// TimeSeek moves the playback clock by a relative amount in seconds
type TimeSeek struct {
	Delta float64 `json:"delta"`
}

// TimeState reports the playback clock
type TimeState struct {
	Time float64 `json:"time"`
}

// ShapeState reports the active oscillator
type ShapeState struct {
	Shape     string `json:"shape"`
	Alternate bool   `json:"alternate"`
}

// WindowRequest asks for amplitudes on [Start, End] every Step seconds
type WindowRequest struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Step  float64 `json:"step"`
}

// WindowResult carries [time, amplitude] pairs
type WindowResult struct {
	Points [][2]float64 `json:"points"`
}

// ErrorMessage reports a request that could not be served
type ErrorMessage struct {
	Message string `json:"message"`
}

// DecodePayload converts a decoded message payload into v
func DecodePayload(msg Message, v interface{}) error {
	if msg.Payload == nil {
		return nil
	}
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", msg.Type, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s payload: %w", msg.Type, err)
	}
	return nil
}
