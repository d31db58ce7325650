package status

import (
	"sync/atomic"

	"github.com/sweeney/rad-monitor/internal/logic"
)

// State is the observable core state.
// Each field is read independently; there is no cross-field atomicity.
type State struct {
	Mode        logic.Mode
	AlertActive bool
	LastReading int
}

// Store holds the shared core fields. Every field has exactly one writer,
// handed out by NewStore; everybody else only reads.
type Store struct {
	alertMode   atomic.Bool
	alertActive atomic.Bool
	lastReading atomic.Int64
}

// Writers are the write capabilities for a Store, one per field.
// Give each one only to the task that owns the field.
type Writers struct {
	Mode    ModeWriter
	Alert   AlertWriter
	Reading ReadingWriter
}

// NewStore creates a Store in the given mode and returns its writers.
func NewStore(initial logic.Mode) (*Store, Writers) {
	s := &Store{}
	s.alertMode.Store(initial == logic.ModeAlert)
	return s, Writers{
		Mode:    ModeWriter{s: s},
		Alert:   AlertWriter{s: s},
		Reading: ReadingWriter{s: s},
	}
}

// Read returns the current values of all three fields.
func (s *Store) Read() State {
	return State{
		Mode:        s.Mode(),
		AlertActive: s.alertActive.Load(),
		LastReading: int(s.lastReading.Load()),
	}
}

// Mode returns the current operating mode.
func (s *Store) Mode() logic.Mode {
	if s.alertMode.Load() {
		return logic.ModeAlert
	}
	return logic.ModeNormal
}

// AlertActive reports whether an alert blink sequence is running.
func (s *Store) AlertActive() bool {
	return s.alertActive.Load()
}

// LastReading returns the most recent reading drained by the aggregator.
func (s *Store) LastReading() int {
	return int(s.lastReading.Load())
}

// ModeWriter is the write capability for the mode field.
type ModeWriter struct{ s *Store }

// Set stores the mode.
func (w ModeWriter) Set(m logic.Mode) {
	w.s.alertMode.Store(m == logic.ModeAlert)
}

// Toggle flips the mode and returns the new value.
// Read-modify-write is safe because the holder is the only writer.
func (w ModeWriter) Toggle() logic.Mode {
	next := w.s.Mode().Toggle()
	w.Set(next)
	return next
}

// AlertWriter is the write capability for the alert-active field.
type AlertWriter struct{ s *Store }

// Set stores the alert-active flag.
func (w AlertWriter) Set(active bool) {
	w.s.alertActive.Store(active)
}

// ReadingWriter is the write capability for the last-reading field.
type ReadingWriter struct{ s *Store }

// Set stores the last reading.
func (w ReadingWriter) Set(v int) {
	w.s.lastReading.Store(int64(v))
}
