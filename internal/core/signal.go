package core

import (
	"context"
	"time"

	"github.com/sweeney/rad-monitor/internal/status"
)

// AlertSignal is a counting event signal: up to capacity posts stay pending
// and each Wait consumes one. Posts beyond capacity are lost.
type AlertSignal struct {
	ch       chan struct{}
	counters *status.Counters
}

// NewAlertSignal creates an AlertSignal. counters may be nil.
func NewAlertSignal(capacity int, counters *status.Counters) *AlertSignal {
	return &AlertSignal{ch: make(chan struct{}, capacity), counters: counters}
}

// Post adds one pending unit without blocking. It reports false when the
// signal is saturated and the post was dropped.
func (s *AlertSignal) Post() bool {
	select {
	case s.ch <- struct{}{}:
		s.counters.AlertPosted()
		return true
	default:
		s.counters.AlertDropped()
		return false
	}
}

// Wait consumes one pending unit, waiting at most timeout. It returns false
// on timeout or when ctx is done.
func (s *AlertSignal) Wait(ctx context.Context, timeout time.Duration) bool {
	select {
	case <-s.ch:
		return true
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.ch:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Pending returns the number of unconsumed posts.
func (s *AlertSignal) Pending() int {
	return len(s.ch)
}

// ToggleSignal is a binary event signal. Setting it while already set is a
// no-op, so any number of requests between two takes collapse into one.
type ToggleSignal struct {
	ch       chan struct{}
	counters *status.Counters
}

// NewToggleSignal creates a cleared ToggleSignal. counters may be nil.
func NewToggleSignal(counters *status.Counters) *ToggleSignal {
	return &ToggleSignal{ch: make(chan struct{}, 1), counters: counters}
}

// Set marks a toggle pending. It reports false if one was already pending.
func (s *ToggleSignal) Set() bool {
	select {
	case s.ch <- struct{}{}:
		s.counters.TogglePosted()
		return true
	default:
		s.counters.ToggleCoalesced()
		return false
	}
}

// TryTake clears a pending toggle without blocking and reports whether
// there was one.
func (s *ToggleSignal) TryTake() bool {
	select {
	case <-s.ch:
		return true
	default:
		return false
	}
}

// Pending reports whether a toggle is waiting to be taken.
func (s *ToggleSignal) Pending() bool {
	return len(s.ch) == 1
}
