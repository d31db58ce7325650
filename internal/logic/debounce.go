package logic

import "time"

// Debouncer rate-limits button presses by time.
//
// A press is accepted only if strictly more than the window has elapsed since
// the last accepted press. It does not require a release in between: a button
// held down is accepted again each time the window re-expires.
type Debouncer struct {
	window       time.Duration
	lastAccepted time.Time
	accepted     bool
}

// NewDebouncer creates a debouncer with the given window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window}
}

// Press records a pressed level observed at now and reports whether it is
// accepted as a new press. The first press is always accepted.
func (d *Debouncer) Press(now time.Time) bool {
	if d.accepted && now.Sub(d.lastAccepted) <= d.window {
		return false
	}
	d.lastAccepted = now
	d.accepted = true
	return true
}

// LastAccepted returns the time of the last accepted press and whether
// any press has been accepted yet.
func (d *Debouncer) LastAccepted() (time.Time, bool) {
	return d.lastAccepted, d.accepted
}

// Window returns the configured debounce window.
func (d *Debouncer) Window() time.Duration {
	return d.window
}
