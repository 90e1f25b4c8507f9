// Package mqtt publishes machine telemetry with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/centrifuge-ctl/internal/device"
)

// Topic is the MQTT topic for machine lifecycle events.
const Topic = "lab/centrifuge/controller/events"

// TopicSystem is the MQTT topic for daemon lifecycle events.
const TopicSystem = "lab/centrifuge/controller/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a machine event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event device.Event) error

	// PublishSystem sends a daemon lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent represents a daemon lifecycle event (startup, shutdown,
// heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the machine event message structure.
type Payload struct {
	Machine MachinePayload `json:"machine"`
}

// MachinePayload contains the machine event details.
type MachinePayload struct {
	Timestamp    string `json:"timestamp"`
	Event        string `json:"event"`
	State        string `json:"state"`
	TargetTempC  int    `json:"target_temperature_c"`
	TargetRPM    int    `json:"target_rpm"`
	DurationSec  int    `json:"run_duration_sec"`
	RemainingSec int    `json:"remaining_sec"`
}

// FormatPayload creates the JSON payload for a machine event.
func FormatPayload(event device.Event) ([]byte, error) {
	payload := Payload{
		Machine: MachinePayload{
			Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
			Event:        string(event.Type),
			State:        event.State.String(),
			TargetTempC:  event.Config.TargetTempC,
			TargetRPM:    event.Config.TargetRPM,
			DurationSec:  event.Config.DurationSec,
			RemainingSec: event.RemainingSec,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload represents the message payload for simple system events
// that don't carry a full status snapshot.
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
// If event.RawPayload is set, it is returned directly (used for full
// status snapshots).
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
