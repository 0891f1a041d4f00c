// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/sweeney/ht680-rx/internal/ht680"
)

// Topic is the MQTT topic for decoded remote-control frames.
const Topic = "home/rf/ht680/frames"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "home/rf/ht680/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a decoded frame to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(frame Frame) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// Frame is one decoded HT680 transmission.
type Frame struct {
	Timestamp time.Time
	Value     uint16 // Z positions read as 0
	ZMask     uint16 // Z=1 polarity
	Chip      string // profile name, e.g. "HT680"
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	Frame FramePayload `json:"frame"`
}

// FramePayload contains the decoded frame details.
type FramePayload struct {
	Timestamp string `json:"timestamp"`
	Chip      string `json:"chip"`
	Value     string `json:"value"`
	ZMask     string `json:"z_mask"`
	Trinary   string `json:"trinary"`
}

// FormatPayload creates the JSON payload for a decoded frame.
func FormatPayload(frame Frame) ([]byte, error) {
	payload := Payload{
		Frame: FramePayload{
			Timestamp: frame.Timestamp.UTC().Format(time.RFC3339),
			Chip:      frame.Chip,
			Value:     fmt.Sprintf("0x%04X", frame.Value),
			ZMask:     fmt.Sprintf("0x%04X", frame.ZMask),
			Trinary:   ht680.Trinary(frame.Value, frame.ZMask),
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
