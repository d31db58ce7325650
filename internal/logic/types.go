// Package logic contains pure decision logic for the radiation monitor.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// Sensor scale and alert threshold (12-bit ADC).
const (
	MinReading = 0
	MaxReading = 4095
	Threshold  = 3000
)

// Mode is the operating mode toggled by the button or the console.
// It is unrelated to whether an alert blink is currently running.
type Mode string

const (
	ModeNormal Mode = "NORMAL"
	ModeAlert  Mode = "ALERT"
)

// Toggle returns the other mode. Anything unrecognised toggles to ALERT.
func (m Mode) Toggle() Mode {
	if m == ModeAlert {
		return ModeNormal
	}
	return ModeAlert
}

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModeNormal || m == ModeAlert
}

// AlertLabel renders the alert flag the way the console shows it.
func AlertLabel(active bool) string {
	if active {
		return "ACTIVE"
	}
	return "CLEAR"
}

// ClampReading forces a raw sample into the 12-bit sensor range.
func ClampReading(v int) int {
	if v < MinReading {
		return MinReading
	}
	if v > MaxReading {
		return MaxReading
	}
	return v
}

// EventType identifies a coordinator reaction.
type EventType string

const (
	EventAlertStart  EventType = "ALERT_START"
	EventAlertClear  EventType = "ALERT_CLEAR"
	EventModeChanged EventType = "MODE_CHANGED"
)

// Event is a coordinator reaction to be published.
type Event struct {
	ID        string
	Timestamp time.Time
	Type      EventType
	Mode      Mode
	Reading   int
}
