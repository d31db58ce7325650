package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/rad-monitor/internal/logic"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Mode          string       `json:"mode"`
	Alert         string       `json:"alert"`
	LastReading   int          `json:"last_reading"`
	InstanceID    string       `json:"instance_id"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
	Tasks         []TaskJSON   `json:"tasks,omitempty"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of the core counters.
type CountsJSON struct {
	SamplesRead      uint64 `json:"samples_read"`
	SamplesDropped   uint64 `json:"samples_dropped"`
	SensorErrors     uint64 `json:"sensor_errors"`
	AlertsPosted     uint64 `json:"alerts_posted"`
	AlertsDropped    uint64 `json:"alerts_dropped"`
	AlertsHandled    uint64 `json:"alerts_handled"`
	PressesAccepted  uint64 `json:"presses_accepted"`
	TogglesPosted    uint64 `json:"toggles_posted"`
	TogglesCoalesced uint64 `json:"toggles_coalesced"`
	ModeFlips        uint64 `json:"mode_flips"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	SampleMs     int64  `json:"sample_ms"`
	ButtonPollMs int64  `json:"button_poll_ms"`
	DebounceMs   int64  `json:"debounce_ms"`
	AlertWaitMs  int64  `json:"alert_wait_ms"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Threshold    int    `json:"threshold"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	Demo         bool   `json:"demo,omitempty"`
}

// TaskJSON is the JSON representation of one task table entry.
type TaskJSON struct {
	Name     string `json:"name"`
	Priority int    `json:"priority"`
}

// ModeString renders the mode, or UNKNOWN when no store is attached.
func ModeString(m logic.Mode) string {
	if !m.Valid() {
		return "UNKNOWN"
	}
	return string(m)
}

func buildInner(snap Snapshot) StatusInner {
	c := snap.Counts
	inner := StatusInner{
		Mode:          ModeString(snap.Mode),
		Alert:         logic.AlertLabel(snap.AlertActive),
		LastReading:   snap.LastReading,
		InstanceID:    snap.InstanceID,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			SamplesRead:      c.SamplesRead,
			SamplesDropped:   c.SamplesDropped,
			SensorErrors:     c.SensorErrors,
			AlertsPosted:     c.AlertsPosted,
			AlertsDropped:    c.AlertsDropped,
			AlertsHandled:    c.AlertsHandled,
			PressesAccepted:  c.PressesAccepted,
			TogglesPosted:    c.TogglesPosted,
			TogglesCoalesced: c.TogglesCoalesced,
			ModeFlips:        c.ModeFlips,
		},
		Config: ConfigJSON{
			SampleMs:     snap.Config.SampleMs,
			ButtonPollMs: snap.Config.ButtonPollMs,
			DebounceMs:   snap.Config.DebounceMs,
			AlertWaitMs:  snap.Config.AlertWaitMs,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Threshold:    snap.Config.Threshold,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			Demo:         snap.Config.Demo,
		},
	}
	for _, task := range snap.Tasks {
		inner.Tasks = append(inner.Tasks, TaskJSON{Name: task.Name, Priority: task.Priority})
	}
	return inner
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the compact JSON status for an MQTT system event
// or a WebSocket push. Empty event and reason are omitted.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
