// Package status holds the shared state of the radiation monitor.
//
// Store carries the three core fields (mode, alert flag, last reading) with
// one writer per field. Tracker wraps a Store with daemon metadata for the
// HTTP console, the TUI and MQTT status events.
package status

import (
	"sync"
	"time"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	SampleMs     int64
	ButtonPollMs int64
	DebounceMs   int64
	AlertWaitMs  int64
	HeartbeatMs  int64
	Threshold    int
	Broker       string
	HTTPAddr     string
	Demo         bool
}

// TaskInfo describes a running task and its relative urgency.
type TaskInfo struct {
	Name     string
	Priority int
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and stays valid after the lock is released.
type Snapshot struct {
	State
	Counts        CounterSnapshot
	InstanceID    string
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
	Tasks         []TaskInfo
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds daemon metadata behind an RWMutex and reads the core
// fields from its Store on every snapshot.
type Tracker struct {
	store    *Store
	counters *Counters

	mu   sync.RWMutex
	meta Snapshot
}

// NewTracker creates a Tracker over store and counters.
func NewTracker(store *Store, counters *Counters, startTime time.Time, instanceID string, cfg Config) *Tracker {
	return &Tracker{
		store:    store,
		counters: counters,
		meta: Snapshot{
			InstanceID: instanceID,
			StartTime:  startTime,
			Config:     cfg,
		},
	}
}

// Store returns the underlying core store.
func (t *Tracker) Store() *Store {
	return t.store
}

// Counters returns the counters fed by the core tasks.
func (t *Tracker) Counters() *Counters {
	return t.counters
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.meta.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.meta.Network = info
	t.mu.Unlock()
}

// SetTasks records the task table in start order.
func (t *Tracker) SetTasks(tasks []TaskInfo) {
	cp := make([]TaskInfo, len(tasks))
	copy(cp, tasks)
	t.mu.Lock()
	t.meta.Tasks = cp
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.meta
	t.mu.RUnlock()
	if t.store != nil {
		s.State = t.store.Read()
	}
	s.Counts = t.counters.Snapshot()
	s.Now = time.Now()
	return s
}
