package status

import "sync/atomic"

// Counters are monotonically increasing event counts fed by the core tasks.
// All methods are safe on a nil receiver so tasks can run without them.
type Counters struct {
	samplesRead      atomic.Uint64
	samplesDropped   atomic.Uint64
	sensorErrors     atomic.Uint64
	alertsPosted     atomic.Uint64
	alertsDropped    atomic.Uint64
	alertsHandled    atomic.Uint64
	pressesAccepted  atomic.Uint64
	togglesPosted    atomic.Uint64
	togglesCoalesced atomic.Uint64
	modeFlips        atomic.Uint64
}

// CounterSnapshot is a point-in-time copy of Counters.
type CounterSnapshot struct {
	SamplesRead      uint64
	SamplesDropped   uint64
	SensorErrors     uint64
	AlertsPosted     uint64
	AlertsDropped    uint64
	AlertsHandled    uint64
	PressesAccepted  uint64
	TogglesPosted    uint64
	TogglesCoalesced uint64
	ModeFlips        uint64
}

// SampleRead counts a successful sensor read.
func (c *Counters) SampleRead() {
	if c != nil {
		c.samplesRead.Add(1)
	}
}

// SampleDropped counts a sample discarded because the channel was full.
func (c *Counters) SampleDropped() {
	if c != nil {
		c.samplesDropped.Add(1)
	}
}

// SensorError counts a failed sensor read.
func (c *Counters) SensorError() {
	if c != nil {
		c.sensorErrors.Add(1)
	}
}

// AlertPosted counts an alert unit added to the signal.
func (c *Counters) AlertPosted() {
	if c != nil {
		c.alertsPosted.Add(1)
	}
}

// AlertDropped counts an alert post lost to a saturated signal.
func (c *Counters) AlertDropped() {
	if c != nil {
		c.alertsDropped.Add(1)
	}
}

// AlertHandled counts an alert unit taken by the coordinator.
func (c *Counters) AlertHandled() {
	if c != nil {
		c.alertsHandled.Add(1)
	}
}

// PressAccepted counts a button press that passed the debounce window.
func (c *Counters) PressAccepted() {
	if c != nil {
		c.pressesAccepted.Add(1)
	}
}

// TogglePosted counts a toggle request that set the signal.
func (c *Counters) TogglePosted() {
	if c != nil {
		c.togglesPosted.Add(1)
	}
}

// ToggleCoalesced counts a toggle request absorbed by one already pending.
func (c *Counters) ToggleCoalesced() {
	if c != nil {
		c.togglesCoalesced.Add(1)
	}
}

// ModeFlipped counts a mode change applied by the coordinator.
func (c *Counters) ModeFlipped() {
	if c != nil {
		c.modeFlips.Add(1)
	}
}

// Snapshot returns the current counts. Individual counters are read
// independently.
func (c *Counters) Snapshot() CounterSnapshot {
	if c == nil {
		return CounterSnapshot{}
	}
	return CounterSnapshot{
		SamplesRead:      c.samplesRead.Load(),
		SamplesDropped:   c.samplesDropped.Load(),
		SensorErrors:     c.sensorErrors.Load(),
		AlertsPosted:     c.alertsPosted.Load(),
		AlertsDropped:    c.alertsDropped.Load(),
		AlertsHandled:    c.alertsHandled.Load(),
		PressesAccepted:  c.pressesAccepted.Load(),
		TogglesPosted:    c.togglesPosted.Load(),
		TogglesCoalesced: c.togglesCoalesced.Load(),
		ModeFlips:        c.modeFlips.Load(),
	}
}
