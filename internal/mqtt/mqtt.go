// Package mqtt publishes monitor events and accepts remote commands over MQTT.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sweeney/rad-monitor/internal/logic"
)

// TopicEvents carries coordinator events (alert start/clear, mode changes).
const TopicEvents = "sensors/radiation/events"

// TopicSystem carries lifecycle events and status snapshots.
const TopicSystem = "sensors/radiation/system"

// TopicCommand is subscribed to for remote commands.
const TopicCommand = "sensors/radiation/cmd"

// DefaultBufferSize is how many messages are kept while disconnected.
const DefaultBufferSize = 100

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a coordinator event to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event logic.Event) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle event (STARTUP, HEARTBEAT, SHUTDOWN, ...).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string
	RawPayload []byte // pre-formatted status JSON; returned as-is by FormatSystemPayload
	Retained   bool
}

// Payload is the message published on TopicEvents.
type Payload struct {
	Radiation RadiationPayload `json:"radiation"`
}

// RadiationPayload contains the event details.
type RadiationPayload struct {
	ID        string `json:"id,omitempty"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Mode      string `json:"mode"`
	Reading   int    `json:"reading"`
}

// FormatPayload creates the JSON payload for a coordinator event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Radiation: RadiationPayload{
			ID:        event.ID,
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			Mode:      string(event.Mode),
			Reading:   event.Reading,
		},
	}
	return json.Marshal(payload)
}

// SystemPayload is used for simple events (LWT, RECONNECTED) that don't
// carry a full status snapshot.
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
// If event.RawPayload is set, it is returned directly.
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

// Command is a request received on TopicCommand.
type Command string

// CommandToggle flips the operating mode, like a button press.
const CommandToggle Command = "toggle"

// ParseCommand decodes a command payload. Surrounding whitespace and case
// are ignored.
func ParseCommand(payload []byte) (Command, error) {
	cmd := Command(strings.ToLower(strings.TrimSpace(string(payload))))
	switch cmd {
	case CommandToggle:
		return cmd, nil
	default:
		return "", fmt.Errorf("unknown command %q", string(payload))
	}
}
